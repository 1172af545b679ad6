package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
}

// SeedRun is the stored summary row of a seeding run.
type SeedRun struct {
	RunID      string
	MintURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  int
	Failed     int
	Aborted    string
}

// SeedStore persists seeding reports.
type SeedStore interface {
	SaveReport(ctx context.Context, report SeedReport) error
	ListRuns(ctx context.Context, opts ListOpts) ([]SeedRun, error)
	ListOutcomes(ctx context.Context, runID string) ([]MarketOutcome, error)
}
