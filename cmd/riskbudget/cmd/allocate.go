package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/journal"
	"github.com/rustyeddy/riskbudget/plan"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Fetch prices and compute the risk plan",
	Long: `Load the deals from the journal, refresh prices for auto-priced deals,
split the risk budget and size every active trade. The run is journaled.

Formats:
  table    - aligned columns (default)
  json     - the full plan
  org      - an Emacs org heading with a table
  csv      - one row per trade
  publish  - entry, TP, SL and volume per active trade, grouped by pair

Examples:
  riskbudget allocate
  riskbudget allocate --format org >> plans.org
  riskbudget allocate --offline`,
	RunE: runAllocate,
}

var (
	allocateFormat  string
	allocateOffline bool
)

func init() {
	rootCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().StringVarP(&allocateFormat, "format", "F", "table", "output format: table, json, org, csv, publish")
	allocateCmd.Flags().BoolVar(&allocateOffline, "offline", false, "use manual prices only, fetch nothing")
}

func runAllocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.planner(allocateOffline, nil).Run(ctx)
	if err != nil {
		return fmt.Errorf("allocate: %w", err)
	}

	out := cmd.OutOrStdout()
	if allocateFormat == "publish" {
		deals, err := a.store.ListDeals(ctx)
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, journal.FormatPublication(deals, p))
		return err
	}
	return writePlan(out, p, allocateFormat)
}

func writePlan(w io.Writer, p plan.Plan, format string) error {
	switch format {
	case "", "table":
		return writePlanTable(w, p)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "org":
		_, err := io.WriteString(w, journal.FormatPlanOrg(p))
		return err
	case "csv":
		return journal.WritePlanCSV(w, p)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writePlanTable(w io.Writer, p plan.Plan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tSTATUS\tWEIGHT\tRISK %\tLOTS\tR:R")
	for _, r := range p.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.3f\t%s\t%s\n",
			r.Pair, r.Status, r.Weight, r.Risk, rowLots(r), optional(r.Metrics.RewardRisk))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := p.Summary
	fmt.Fprintf(w, "\nUsed %.3f%% of %.3f%%, leftover %.3f%%, %d active\n",
		s.UsedRisk, p.Settings.TotalRisk, s.Leftover, s.ActiveCount)
	if s.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", s.Note)
	}
	if len(p.Missing) > 0 {
		fmt.Fprintf(w, "No price: %s\n", strings.Join(p.Missing, ", "))
	}
	return nil
}

func rowLots(r plan.Row) string {
	switch {
	case r.Lots != nil:
		return fmt.Sprintf("%.2f", r.Lots.Lots)
	case r.LotError != "":
		return "?"
	default:
		return "-"
	}
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
