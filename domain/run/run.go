// Package run defines the record of one autoplay session and the
// repository that persists it.
package run

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Record captures the result of a single run for later inspection.
type Record struct {
	ID             string
	Map            string
	Difficulty     string
	Mode           string
	StartedAt      time.Time
	FinishedAt     time.Time
	StepsCompleted int
	StepsPlanned   int
	FinalCurrency  int
	Outcome        Outcome
	Error          string
}

// NewRecord creates a record for a run that is starting now.
func NewRecord(mapName, difficulty, mode string) *Record {
	return &Record{
		ID:         uuid.NewString(),
		Map:        mapName,
		Difficulty: difficulty,
		Mode:       mode,
		StartedAt:  time.Now(),
	}
}

// Finish stamps the end time and outcome. A non-nil err marks the run
// failed and stores the message.
func (r *Record) Finish(outcome Outcome, err error) {
	r.FinishedAt = time.Now()
	r.Outcome = outcome
	if err != nil {
		r.Error = err.Error()
	}
}

// Duration returns the wall time of the run.
func (r *Record) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Repository persists run records.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]*Record, error)
}
