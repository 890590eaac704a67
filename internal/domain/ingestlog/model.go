package ingestlog

import "time"

// Status is the outcome of one ingestion step.
type Status string

const (
	StatusInserted Status = "inserted"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// Step names a record set written for a session.
type Step string

const (
	// StepRead covers reading and reconstructing a session before any write.
	StepRead       Step = "read"
	StepUser       Step = "user"
	StepRawSamples Step = "raw_samples"
	StepProcessed  Step = "processed_metrics"
)

// Entry records one step outcome of an ingestion run.
type Entry struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id"`
	Source        string    `json:"source"`
	MeasurementID *string   `json:"measurement_id,omitempty"`
	UserID        *int64    `json:"user_id,omitempty"`
	Step          Step      `json:"step"`
	Status        Status    `json:"status"`
	ErrorClass    string    `json:"error_class,omitempty"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
