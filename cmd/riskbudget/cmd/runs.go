package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Query the journaled allocation runs",
	Long: `Every allocate, watch tick and API refresh records its result.

Subcommands:
  list  - Newest runs first
  show  - One run with its per-deal results

Examples:
  riskbudget runs list -n 5
  riskbudget runs show <run-id>`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsLimit int

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	recs, err := a.store.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tUSED %\tLEFTOVER %\tACTIVE\tNOTE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%d\t%s\n",
			r.RunID, r.Created.Local().Format(time.DateTime),
			r.Summary.UsedRisk, r.Summary.Leftover, r.Summary.ActiveCount, r.Summary.Note)
	}
	return tw.Flush()
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.store.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s at %s\n", r.RunID, r.Created.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Used %.3f%%, leftover %.3f%%\n\n", r.Summary.UsedRisk, r.Summary.Leftover)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEAL\tPAIR\tSTATUS\tWEIGHT\tRISK %\tLOTS")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.3f\t%s\n",
			res.DealID, res.Pair, res.Status, res.Weight, res.Risk, optional(res.Lots))
	}
	return tw.Flush()
}

