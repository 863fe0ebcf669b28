package workflow

// NodeStatus represents the execution state of a node
type NodeStatus string

const (
	StatusIdle      NodeStatus = "idle"
	StatusRunning   NodeStatus = "running"
	StatusCompleted NodeStatus = "completed"
	StatusError     NodeStatus = "error"
	StatusTimedOut  NodeStatus = "timed_out"
)

// Position is a location on the canvas, in arbitrary canvas units
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Config is a node's configuration blob. It is replaced wholesale on
// save, never merged field by field.
type Config map[string]interface{}

// Copy returns an independent shallow copy of the config
func (c Config) Copy() Config {
	if c == nil {
		return Config{}
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Node is a single step in the pipeline graph. Fields are private;
// all mutation goes through the owning Graph so concurrent updates
// from user actions and status propagation stay consistent.
type Node struct {
	id         string
	typeID     string
	label      string
	position   Position
	config     Config
	configured bool
	status     NodeStatus
}

// NodeView is an immutable value snapshot of a node, safe to hold
// outside the graph's lock
type NodeView struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Label      string     `json:"label"`
	Position   Position   `json:"position"`
	Config     Config     `json:"config"`
	Configured bool       `json:"configured"`
	Status     NodeStatus `json:"status"`
}

func (n *Node) view() NodeView {
	return NodeView{
		ID:         n.id,
		Type:       n.typeID,
		Label:      n.label,
		Position:   n.position,
		Config:     n.config.Copy(),
		Configured: n.configured,
		Status:     n.status,
	}
}

// Edge is a directed connection between two nodes. Both endpoints must
// exist at creation time; nothing prevents duplicate edges or cycles.
type Edge struct {
	ID       string `json:"id"`
	SourceID string `json:"source"`
	TargetID string `json:"target"`
}
