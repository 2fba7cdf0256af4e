// Package store persists batch run history in a local sqlite journal so
// interrupted runs can be inspected and the serve surface can report on
// past jobs.
package store

import (
	"context"
	"time"

	"github.com/ai-navigator/ingest-cli/internal/model"
)

// RunStatus is the lifecycle of a journaled batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
)

// RunRecord is one journaled batch run.
type RunRecord struct {
	ID         string     `json:"id"`
	Status     RunStatus  `json:"status"`
	LeadCount  int        `json:"lead_count"`
	Processed  int        `json:"processed"`
	Created    int        `json:"created"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// Store is the journal contract. The sqlite implementation is the only one;
// the interface exists so the serve handlers and runner can be tested with
// a fake.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	StartRun(ctx context.Context, jobID string, leadCount int) error
	RecordOutcome(ctx context.Context, jobID string, outcome model.LeadOutcome) error
	FinishRun(ctx context.Context, report *model.BatchReport) error

	GetRun(ctx context.Context, jobID string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	ListOutcomes(ctx context.Context, jobID string) ([]model.LeadOutcome, error)
}
