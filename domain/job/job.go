package job

// Status is the remote job status as reported by the backend
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status ends the polling loop
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RowRange selects the slice of uploaded rows to process
type RowRange struct {
	Start int `json:"start" validate:"min=0"`
	End   int `json:"end" validate:"gtfield=Start"`
}

// Request describes one remote execution of the configured processor
// against a previously uploaded file
type Request struct {
	FileID    string   `json:"file_id" validate:"required"`
	Task      string   `json:"task" validate:"required"`
	Mode      string   `json:"mode" validate:"required,oneof=batch product_id_lookup"`
	Model     string   `json:"llm_model" validate:"required"`
	BatchSize int      `json:"batch_size" validate:"min=1,max=100"`
	RowRange  RowRange `json:"row_range"`
}

// Record is the last-known state of a remote job. Only Status drives
// the lifecycle; the remaining fields are carried through for display.
type Record struct {
	JobID          string                   `json:"job_id"`
	Status         Status                   `json:"status"`
	ProcessedCount int                      `json:"processed_count"`
	TotalCount     int                      `json:"total_count"`
	Results        []map[string]interface{} `json:"results,omitempty"`
	OutputFilePath string                   `json:"output_file_path,omitempty"`
	ErrorMessage   string                   `json:"error_message,omitempty"`
}

// UploadedFileRef identifies a file the backend has accepted for
// processing
type UploadedFileRef struct {
	FileID     string                   `json:"file_id"`
	Filename   string                   `json:"filename"`
	RowCount   int                      `json:"row_count"`
	Columns    []string                 `json:"columns,omitempty"`
	SampleData []map[string]interface{} `json:"sample_data,omitempty"`
}
