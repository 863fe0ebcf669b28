package catalog

// Role describes a node type's structural role in a pipeline:
// sources only emit, processors accept and emit, sinks only accept.
type Role string

const (
	RoleSource    Role = "source"
	RoleProcessor Role = "processor"
	RoleSink      Role = "sink"
)

// Category groups agent types in the palette
type Category string

const (
	CategoryInput      Category = "Input"
	CategoryProcessing Category = "Processing"
	CategoryAnalysis   Category = "Analysis"
	CategoryOutput     Category = "Output"
)

// Descriptor holds the immutable display metadata for an agent type.
// The same type id always yields the same descriptor so nodes render
// identically across the session.
type Descriptor struct {
	TypeID   string   `json:"type_id"`
	Label    string   `json:"label"`
	Role     Role     `json:"role"`
	Category Category `json:"category"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
}

// Agent type identifiers for the built-in palette
const (
	TypeCSVUpload      = "csv_upload"
	TypeLLMProcessor   = "llm_processor"
	TypeDataAnalyzer   = "data_analyzer"
	TypeOutputDownload = "output_download"
)

// Catalog is a read-only registry of agent type descriptors,
// populated once at process start
type Catalog struct {
	descriptors map[string]Descriptor
}

// NewCatalog creates a catalog with the built-in agent types
func NewCatalog() *Catalog {
	c := &Catalog{descriptors: make(map[string]Descriptor)}

	for _, d := range []Descriptor{
		{
			TypeID:   TypeCSVUpload,
			Label:    "CSV Upload",
			Role:     RoleSource,
			Category: CategoryInput,
			Icon:     "upload",
			Color:    "#4CAF50",
		},
		{
			TypeID:   TypeLLMProcessor,
			Label:    "LLM Processor",
			Role:     RoleProcessor,
			Category: CategoryProcessing,
			Icon:     "cpu",
			Color:    "#2196F3",
		},
		{
			TypeID:   TypeDataAnalyzer,
			Label:    "Data Analyzer",
			Role:     RoleProcessor,
			Category: CategoryAnalysis,
			Icon:     "chart",
			Color:    "#9C27B0",
		},
		{
			TypeID:   TypeOutputDownload,
			Label:    "Output Download",
			Role:     RoleSink,
			Category: CategoryOutput,
			Icon:     "download",
			Color:    "#FF9800",
		},
	} {
		c.descriptors[d.TypeID] = d
	}

	return c
}

// Describe returns the descriptor for a type id. The second return value
// is false for unknown ids; callers needing a safe value should use Default.
func (c *Catalog) Describe(typeID string) (Descriptor, bool) {
	d, ok := c.descriptors[typeID]
	return d, ok
}

// Default returns the registered descriptor, or a generic fallback for
// unknown ids so rendering never fails hard on a stale type id
func (c *Catalog) Default(typeID string) Descriptor {
	if d, ok := c.descriptors[typeID]; ok {
		return d
	}
	return Descriptor{
		TypeID:   typeID,
		Label:    "Agent",
		Role:     RoleProcessor,
		Category: CategoryProcessing,
		Icon:     "box",
		Color:    "#9E9E9E",
	}
}

// Descriptors returns all registered descriptors
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		out = append(out, d)
	}
	return out
}
