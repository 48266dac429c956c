package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/riskbudget/plan"
)

// DefaultSpec refreshes prices and re-plans once a minute.
const DefaultSpec = "@every 60s"

// Runner recomputes a plan. *plan.Planner satisfies it.
type Runner interface {
	Run(ctx context.Context) (plan.Plan, error)
}

// Flusher drops cached quotes before a scheduled run.
type Flusher interface {
	Flush()
}

type Options struct {
	Spec    string
	Runner  Runner
	Flusher Flusher
	// OnPlan is called after every successful run.
	OnPlan func(plan.Plan)
	// OnError is called after every failed run.
	OnError func(error)
	Logger  zerolog.Logger
}

// Watcher re-runs the planner on a cron schedule. A tick that fires while
// the previous run is still going is skipped.
type Watcher struct {
	cron *cron.Cron
	opts Options
	ctx  context.Context
	log  zerolog.Logger
	runs atomic.Int64
}

func New(ctx context.Context, opts Options) (*Watcher, error) {
	if opts.Spec == "" {
		opts.Spec = DefaultSpec
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("scheduler: runner is required")
	}

	log := opts.Logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}
	w := &Watcher{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		opts: opts,
		ctx:  ctx,
		log:  log,
	}

	if _, err := w.cron.AddFunc(opts.Spec, w.tick); err != nil {
		return nil, fmt.Errorf("register refresh task %q: %w", opts.Spec, err)
	}
	return w, nil
}

// Start runs once immediately, then on schedule.
func (w *Watcher) Start() {
	w.tick()
	w.cron.Start()
	w.log.Info().Str("spec", w.opts.Spec).Msg("scheduler started")
}

// Stop waits for a running job to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info().Msg("scheduler stopped")
}

// Runs reports how many ticks have executed.
func (w *Watcher) Runs() int64 { return w.runs.Load() }

// RunNow executes one refresh synchronously.
func (w *Watcher) RunNow() { w.tick() }

func (w *Watcher) tick() {
	if w.ctx.Err() != nil {
		return
	}
	w.runs.Add(1)
	if w.opts.Flusher != nil {
		w.opts.Flusher.Flush()
	}

	p, err := w.opts.Runner.Run(w.ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("scheduled plan failed")
		if w.opts.OnError != nil {
			w.opts.OnError(err)
		}
		return
	}
	if w.opts.OnPlan != nil {
		w.opts.OnPlan(p)
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
