package domain

import "time"

type DocumentFailure struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// ProcessingStats counts populated (non-sentinel) values per field.
type ProcessingStats struct {
	Records           int `json:"records"`
	Name              int `json:"name"`
	Phone             int `json:"phone"`
	Email             int `json:"email"`
	Location          int `json:"location"`
	Qualification     int `json:"qualification"`
	Skills            int `json:"skills"`
	YearsOfExperience int `json:"years_of_experience"`
}

type BatchReport struct {
	BatchID   string            `json:"batch_id"`
	Total     int               `json:"total"`
	Records   []CandidateRecord `json:"records"`
	Failures  []DocumentFailure `json:"failures"`
	Stats     ProcessingStats   `json:"stats"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration_ns"`
}

func (r *BatchReport) Processed() int { return len(r.Records) }

func (r *BatchReport) Failed() int { return len(r.Failures) }

// BatchRequest asks a worker to parse every supported file in SourceDir.
type BatchRequest struct {
	BatchID    string   `json:"batch_id"`
	SourceDir  string   `json:"source_dir"`
	OutputPath string   `json:"output_path"`
	Format     string   `json:"format,omitempty"`
	Fields     []string `json:"fields,omitempty"`
}

// BatchCompleted is published once a batch has been exported.
type BatchCompleted struct {
	BatchID    string            `json:"batch_id"`
	Total      int               `json:"total"`
	Processed  int               `json:"processed"`
	Failed     int               `json:"failed"`
	Failures   []DocumentFailure `json:"failures,omitempty"`
	Stats      ProcessingStats   `json:"stats"`
	Format     string            `json:"format"`
	Output     string            `json:"output,omitempty"`
	FinishedAt time.Time         `json:"finished_at"`
}

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ExportBaseName is the file name, without extension, of a batch export.
const ExportBaseName = "resume_data"

// ExportOptions selects the export encoding and an optional column subset.
// BatchID is generated when empty; a non-empty Output is where the export is written.
type ExportOptions struct {
	Format  string
	Fields  []Field
	BatchID string
	Output  string
}

// ParseResult is a finished batch together with its encoded export.
type ParseResult struct {
	Report      *BatchReport
	Format      string
	Content     []byte
	ContentType string
	Filename    string
}
