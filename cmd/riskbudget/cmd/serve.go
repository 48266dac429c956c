package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/api"
	"github.com/rustyeddy/riskbudget/metrics"
	"github.com/rustyeddy/riskbudget/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the plan over HTTP and keep it fresh",
	Long: `Start the HTTP API and a background watcher that recomputes the plan on
the configured schedule.

Endpoints:
  GET  /healthz
  GET  /metrics
  POST /v1/allocate       stateless allocation of the posted deals
  GET  /v1/plan           latest plan from the journal
  POST /v1/plan/refresh   recompute now

Example:
  riskbudget serve --addr :9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr    string
	serveNoWatch bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not recompute on a schedule")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	rec := metrics.New(prometheus.DefaultRegisterer)
	planner := a.planner(false, rec)

	if !serveNoWatch {
		w, err := scheduler.New(ctx, scheduler.Options{
			Spec:    a.cfg.Prices.Refresh,
			Runner:  planner,
			Flusher: a.flusher(),
			OnError: func(error) { rec.RecordError("plan") },
			Logger:  a.log,
		})
		if err != nil {
			return err
		}
		w.Start()
		defer w.Stop()
	}

	srv := api.New(api.Options{
		Addr:     addr,
		Planner:  planner,
		Rates:    a.quotes,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   a.log,
	})
	return srv.Start(ctx)
}
