package catalog

// TaskType identifies a processing task the backend supports
type TaskType string

const (
	TaskAttributeExtraction    TaskType = "attribute_extraction"
	TaskSalesFAQ               TaskType = "sales_faq"
	TaskDataQA                 TaskType = "data_qa"
	TaskContentEnrichment      TaskType = "content_enrichment"
	TaskCategoryClassification TaskType = "category_classification"
)

// ProcessingMode identifies how rows are selected for processing
type ProcessingMode string

const (
	ModeBatch           ProcessingMode = "batch"
	ModeProductIDLookup ProcessingMode = "product_id_lookup"
)

// Model identifies an LLM the backend can run a task against
type Model string

const (
	ModelGPT35Turbo Model = "gpt-3.5-turbo"
	ModelGPT4oMini  Model = "gpt-4o-mini"
	ModelGPT4o      Model = "gpt-4o"
)

// Option pairs a machine id with a display name for configuration forms
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskOptions returns the selectable processing tasks
func TaskOptions() []Option {
	return []Option{
		{ID: string(TaskAttributeExtraction), Name: "Attribute Extraction"},
		{ID: string(TaskSalesFAQ), Name: "Sales FAQ"},
		{ID: string(TaskDataQA), Name: "Data QA"},
		{ID: string(TaskContentEnrichment), Name: "Content Enrichment"},
		{ID: string(TaskCategoryClassification), Name: "Category Classification"},
	}
}

// ModeOptions returns the selectable processing modes
func ModeOptions() []Option {
	return []Option{
		{ID: string(ModeBatch), Name: "Batch"},
		{ID: string(ModeProductIDLookup), Name: "Product Id Lookup"},
	}
}

// ModelOptions returns the selectable models
func ModelOptions() []Option {
	return []Option{
		{ID: string(ModelGPT35Turbo), Name: "gpt-3.5-turbo"},
		{ID: string(ModelGPT4oMini), Name: "gpt-4o-mini"},
		{ID: string(ModelGPT4o), Name: "gpt-4o"},
	}
}

// ValidTask reports whether id names a supported task
func ValidTask(id string) bool {
	switch TaskType(id) {
	case TaskAttributeExtraction, TaskSalesFAQ, TaskDataQA,
		TaskContentEnrichment, TaskCategoryClassification:
		return true
	}
	return false
}

// ValidModel reports whether id names a supported model
func ValidModel(id string) bool {
	switch Model(id) {
	case ModelGPT35Turbo, ModelGPT4oMini, ModelGPT4o:
		return true
	}
	return false
}
