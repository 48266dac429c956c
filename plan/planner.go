package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/market/quotes"
	"github.com/rustyeddy/riskbudget/pkg/id"
	"github.com/rustyeddy/riskbudget/risk"
)

// Source loads the persisted deals, params and settings.
type Source interface {
	ListDeals(ctx context.Context) ([]risk.Deal, error)
	LoadParams(ctx context.Context) (map[string]risk.Params, error)
	LoadSettings(ctx context.Context) (risk.Settings, error)
}

// Recorder keeps a history of runs.
type Recorder interface {
	RecordRun(ctx context.Context, p Plan) error
}

// Observer is told about every finished run.
type Observer interface {
	ObservePlan(p Plan, took time.Duration)
}

type Config struct {
	Source   Source
	Prices   market.PriceSource
	Rates    market.RateSource
	Account  Account
	Recorder Recorder
	Observer Observer
	Tracker  *Tracker
	Logger   zerolog.Logger
}

// Planner runs the whole pipeline: load, price, allocate, size, record.
type Planner struct {
	cfg Config
	log zerolog.Logger
}

func NewPlanner(cfg Config) *Planner {
	if cfg.Tracker == nil {
		cfg.Tracker = NewTracker()
	}
	return &Planner{
		cfg: cfg,
		log: cfg.Logger.With().Str("component", "planner").Logger(),
	}
}

func (p *Planner) Tracker() *Tracker { return p.cfg.Tracker }

// Run recomputes the plan from scratch. The result is returned even when a
// newer run has already been published.
func (p *Planner) Run(ctx context.Context) (Plan, error) {
	start := time.Now()
	ticket := p.cfg.Tracker.Begin()

	deals, err := p.cfg.Source.ListDeals(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load deals: %w", err)
	}
	params, err := p.cfg.Source.LoadParams(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load params: %w", err)
	}
	settings, err := p.cfg.Source.LoadSettings(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("load settings: %w", err)
	}

	var snap market.PriceSnapshot
	if p.cfg.Prices != nil {
		snap = quotes.Refresh(ctx, p.cfg.Prices, AutoPairs(deals, params), p.log)
	}

	out := Compute(ctx, Input{
		Deals:    deals,
		Params:   params,
		Prices:   snap,
		Settings: settings,
		Account:  p.cfg.Account,
	}, p.cfg.Rates)
	out.ID = id.New()
	out.CreatedAt = start.UTC()

	if p.cfg.Recorder != nil {
		if err := p.cfg.Recorder.RecordRun(ctx, out); err != nil {
			p.log.Error().Err(err).Str("run", out.ID).Msg("record run failed")
		}
	}
	if p.cfg.Observer != nil {
		p.cfg.Observer.ObservePlan(out, time.Since(start))
	}
	if !p.cfg.Tracker.Publish(ticket, out) {
		p.log.Debug().Uint64("ticket", ticket).Msg("stale run discarded")
	}

	p.log.Info().
		Str("run", out.ID).
		Float64("used", out.Summary.UsedRisk).
		Float64("leftover", out.Summary.Leftover).
		Int("active", out.Summary.ActiveCount).
		Str("note", out.Summary.Note).
		Msg("plan computed")
	return out, nil
}

// AutoPairs lists the symbols that need a fetched price: deals in manual
// mode bring their own.
func AutoPairs(deals []risk.Deal, params map[string]risk.Params) []string {
	var pairs []string
	for i, d := range deals {
		if params[risk.DealID(d, i)].Mode() == risk.PriceManual {
			continue
		}
		if k := market.NormalizePair(d.Pair); k != "" {
			pairs = append(pairs, k)
		}
	}
	return pairs
}
