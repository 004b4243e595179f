package storage

import (
	"context"
	"time"

	"semgate/internal/report"
)

// Run is one persisted verification outcome. The full report is stored as
// JSON so the verdict can be re-rendered without re-running the engine.
type Run struct {
	ID          int64
	BaselineID  string
	CandidateID string
	Preserved   bool
	Score       float64
	ParseError  string
	Report      *report.Report
	CreatedAt   time.Time
}

// HistoryStore defines operations for persisting verification runs.
type HistoryStore interface {
	// SaveReport appends a single pair report to the history.
	SaveReport(ctx context.Context, r *report.Report) (int64, error)

	// SaveBatch appends every report of a batch in one transaction.
	SaveBatch(ctx context.Context, b *report.BatchReport) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetRun retrieves a run by its ID.
	GetRun(ctx context.Context, id int64) (*Run, error)

	Close() error
}
