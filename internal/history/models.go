package history

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded transcription.
type Run struct {
	ID           string     `json:"id"`
	Input        string     `json:"input"`
	ContentHash  string     `json:"content_hash,omitempty"`
	Model        string     `json:"model"`
	Language     string     `json:"language,omitempty"`
	Device       string     `json:"device,omitempty"`
	Status       Status     `json:"status"`
	FailureKind  string     `json:"failure_kind,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	Document     string     `json:"document,omitempty"`
	WorkingPath  string     `json:"working_path,omitempty"`
	Converted    bool       `json:"converted"`
	SegmentCount int        `json:"segment_count"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Duration returns how long a finished run took, or 0 while it is running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome holds the values recorded when a run finishes.
type Outcome struct {
	Status       Status
	Device       string
	FailureKind  string
	ErrorMessage string
	Document     string
	WorkingPath  string
	Converted    bool
	SegmentCount int
}
