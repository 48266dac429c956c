package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/journal"
	"github.com/rustyeddy/riskbudget/risk"
)

var dealsCmd = &cobra.Command{
	Use:   "deals",
	Short: "Manage the planned deals",
	Long: `Add, remove, list, import and export the deals in the journal.

Subcommands:
  list    - Show every deal
  add     - Add a deal
  rm      - Remove a deal and its params
  import  - Replace all deals from a JSON file
  export  - Write deals, params and settings as JSON

Examples:
  riskbudget deals add --pair EURUSD --open 1.1 --sl 1.09 --tp 1.13
  riskbudget deals import deals.json
  riskbudget deals export -o backup.json`,
}

var dealsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every deal",
	Args:  cobra.NoArgs,
	RunE:  runDealsList,
}

var dealsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a deal",
	Args:  cobra.NoArgs,
	RunE:  runDealsAdd,
}

var dealsRmCmd = &cobra.Command{
	Use:   "rm <deal-id>",
	Short: "Remove a deal and its params",
	Args:  cobra.ExactArgs(1),
	RunE:  runDealsRm,
}

var dealsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace all deals from a JSON file (stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDealsImport,
}

var dealsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write deals, params and settings as JSON",
	Args:  cobra.NoArgs,
	RunE:  runDealsExport,
}

var (
	dealAdd       risk.Deal
	dealOpen      float64
	dealSL        float64
	dealTP        float64
	dealsExportTo string
)

func init() {
	rootCmd.AddCommand(dealsCmd)
	dealsCmd.AddCommand(dealsListCmd)
	dealsCmd.AddCommand(dealsAddCmd)
	dealsCmd.AddCommand(dealsRmCmd)
	dealsCmd.AddCommand(dealsImportCmd)
	dealsCmd.AddCommand(dealsExportCmd)

	f := dealsAddCmd.Flags()
	f.StringVarP(&dealAdd.Pair, "pair", "p", "", "instrument, e.g. EURUSD or XAUUSD (required)")
	f.Float64Var(&dealOpen, "open", 0, "entry price")
	f.Float64Var(&dealSL, "sl", 0, "stop loss")
	f.Float64Var(&dealTP, "tp", 0, "take profit")
	f.Float64Var(&dealAdd.Lots, "lots", 0, "planned volume")
	f.Float64Var(&dealAdd.Deposit, "deposit", 0, "deposit for this deal (default from config)")
	f.StringVar(&dealAdd.DepositCurrency, "currency", "", "deposit currency for this deal")
	dealsAddCmd.MarkFlagRequired("pair")

	dealsExportCmd.Flags().StringVarP(&dealsExportTo, "output", "o", "", "output file (default stdout)")
}

func runDealsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	deals, err := a.store.ListDeals(ctx)
	if err != nil {
		return fmt.Errorf("list deals: %w", err)
	}
	params, err := a.store.LoadParams(ctx)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}
	if len(deals) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No deals.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPAIR\tOPEN\tSL\tTP\tLOTS\tMODE\tENABLED")
	for i, d := range deals {
		p := params[risk.DealID(d, i)]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\t%t\n",
			d.ID, d.Pair, optional(d.Open), optional(d.StopLoss), optional(d.TakeProfit),
			d.Lots, p.Mode(), p.IsEnabled())
	}
	return tw.Flush()
}

func runDealsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	d := dealAdd
	d.Open = flagFloat(cmd, "open", dealOpen)
	d.StopLoss = flagFloat(cmd, "sl", dealSL)
	d.TakeProfit = flagFloat(cmd, "tp", dealTP)

	saved, err := a.store.SaveDeal(ctx, d)
	if err != nil {
		return fmt.Errorf("save deal: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %s\n", saved.ID, saved.Pair)
	return nil
}

func runDealsRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.DeleteDeal(ctx, args[0]); err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s\n", args[0])
	return nil
}

func runDealsImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open import: %w", err)
		}
		defer f.Close()
		in = f
	}

	n, err := journal.Import(ctx, a.store, in)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d deals\n", n)
	return nil
}

func runDealsExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if dealsExportTo != "" {
		f, err := os.Create(dealsExportTo)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := journal.Export(ctx, a.store, out); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if dealsExportTo != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", dealsExportTo)
	}
	return nil
}

// flagFloat returns nil for a price flag the user did not pass, so an
// unset price stays missing instead of becoming zero.
func flagFloat(cmd *cobra.Command, name string, v float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return risk.Float(v)
}
