package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/plan"
	"github.com/rustyeddy/riskbudget/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the plan on a schedule",
	Long: `Refresh prices and recompute the plan on the schedule from the config
(prices.refresh, a cron spec with seconds) until interrupted. Each plan is
printed in the chosen format.

Examples:
  riskbudget watch
  riskbudget watch --every "@every 5m" --format org`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchSpec   string
	watchFormat string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchSpec, "every", "", "cron spec (default from config)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "F", "table", "output format: table, json, org, csv")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	spec := watchSpec
	if spec == "" {
		spec = a.cfg.Prices.Refresh
	}

	out := cmd.OutOrStdout()
	w, err := scheduler.New(ctx, scheduler.Options{
		Spec:    spec,
		Runner:  a.planner(false, nil),
		Flusher: a.flusher(),
		OnPlan: func(p plan.Plan) {
			if err := writePlan(out, p, watchFormat); err != nil {
				a.log.Error().Err(err).Msg("print plan")
			}
			fmt.Fprintln(out)
		},
		Logger: a.log,
	})
	if err != nil {
		return err
	}

	w.Start()
	<-ctx.Done()
	w.Stop()
	return nil
}
