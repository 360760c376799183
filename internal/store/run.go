package store

import "time"

// RunStatus is the outcome of a pipeline run.
type RunStatus string

const (
	StatusOK    RunStatus = "ok"
	StatusError RunStatus = "error"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID          string    `json:"id"`
	InputPath   string    `json:"input_path"`
	OutputPath  string    `json:"output_path"`
	StartedAt   time.Time `json:"started_at"`
	ReferenceAt time.Time `json:"reference_at"` // "now" used for offline durations
	Status      RunStatus `json:"status"`
	ErrorCode   string    `json:"error_code,omitempty"`
	UserCount   int       `json:"user_count"`
	Digest      string    `json:"digest,omitempty"`
	Output      string    `json:"output,omitempty"` // bytes written to the output file
}

// timeLayout stores timestamps as sortable UTC text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
