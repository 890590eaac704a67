package ingest

import (
	"time"

	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/domain/report"
)

// StepResult is the outcome of one record set write, or of reading the
// session when nothing could be written.
type StepResult struct {
	Step     ingestlog.Step `json:"step"`
	Status   loader.Outcome `json:"status"`
	Rows     int            `json:"rows,omitempty"`
	Class    ErrorClass     `json:"error_class,omitempty"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration_ns"`
}

// DocumentResult is the extraction outcome of one report document.
type DocumentResult struct {
	Kind   report.Kind   `json:"kind"`
	Source string        `json:"source,omitempty"`
	Fields int           `json:"fields"`
	Misses []report.Miss `json:"misses,omitempty"`
	// Ambiguous lists numbers whose separator role was guessed.
	Ambiguous []report.Miss `json:"ambiguous,omitempty"`
	Class     ErrorClass    `json:"error_class,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// SessionResult describes everything that happened to one session.
type SessionResult struct {
	Dir           string             `json:"dir"`
	Log           string             `json:"log"`
	MeasurementID string             `json:"measurement_id,omitempty"`
	UserID        int64              `json:"user_id,omitempty"`
	Samples       int                `json:"samples"`
	Status        loader.Outcome     `json:"status"`
	Steps         []StepResult       `json:"steps"`
	Documents     []DocumentResult   `json:"documents,omitempty"`
	Collisions    []report.Collision `json:"collisions,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// settle derives the session status from its steps: failed when any step
// failed, skipped when every step was skipped, inserted otherwise.
func (r *SessionResult) settle() {
	if len(r.Steps) == 0 {
		r.Status = loader.OutcomeFailed
		return
	}
	skipped := true
	for _, s := range r.Steps {
		if s.Status == loader.OutcomeFailed {
			r.Status = loader.OutcomeFailed
			return
		}
		if s.Status != loader.OutcomeSkipped {
			skipped = false
		}
	}
	if skipped {
		r.Status = loader.OutcomeSkipped
		return
	}
	r.Status = loader.OutcomeInserted
}

// Report is the structured result of one ingestion run.
type Report struct {
	RunID      string          `json:"run_id"`
	Root       string          `json:"root"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Sessions   []SessionResult `json:"sessions"`
	// Ignored lists session folders without an interval log.
	Ignored []string `json:"ignored,omitempty"`
}

// Counts tallies sessions by status.
func (r *Report) Counts() map[loader.Outcome]int {
	out := map[loader.Outcome]int{}
	for _, s := range r.Sessions {
		out[s.Status]++
	}
	return out
}

// Failed reports whether any session failed.
func (r *Report) Failed() bool {
	return r.Counts()[loader.OutcomeFailed] > 0
}
