// journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/riskbudget/plan"
	"github.com/rustyeddy/riskbudget/risk"
)

var ErrNotFound = errors.New("not found")

// Store is everything the CLI and the planner need from persistence.
type Store interface {
	plan.Source
	plan.Recorder

	GetDeal(ctx context.Context, id string) (risk.Deal, error)
	SaveDeal(ctx context.Context, d risk.Deal) (risk.Deal, error)
	DeleteDeal(ctx context.Context, id string) error
	ReplaceDeals(ctx context.Context, deals []risk.Deal) error
	SaveParams(ctx context.Context, dealID string, p risk.Params) error
	SaveSettings(ctx context.Context, s risk.Settings) error
	SeedSettings(ctx context.Context, s risk.Settings) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	GetRun(ctx context.Context, runID string) (RunRecord, error)
	Close() error
}

// RunRecord is a journaled allocation run.
type RunRecord struct {
	RunID   string
	Created time.Time
	Summary risk.Summary
	Results []RunResult
}

type RunResult struct {
	DealID string
	Pair   string
	Risk   float64
	Active bool
	Status risk.Status
	Weight float64
	Lots   *float64
}

var _ Store = (*SQLite)(nil)
