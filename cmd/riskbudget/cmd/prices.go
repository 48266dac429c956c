package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/market/quotes"
	"github.com/rustyeddy/riskbudget/plan"
)

var pricesCmd = &cobra.Command{
	Use:   "prices [pair...]",
	Short: "Fetch current prices",
	Long: `Fetch the current price of the given pairs, or of every auto-priced
deal when no pair is given.

Examples:
  riskbudget prices
  riskbudget prices EURUSD XAUUSD BTCUSDT GER40`,
	RunE: runPrices,
}

func init() {
	rootCmd.AddCommand(pricesCmd)
}

func runPrices(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	pairs := args
	if len(pairs) == 0 {
		deals, err := a.store.ListDeals(ctx)
		if err != nil {
			return fmt.Errorf("list deals: %w", err)
		}
		params, err := a.store.LoadParams(ctx)
		if err != nil {
			return fmt.Errorf("load params: %w", err)
		}
		pairs = plan.AutoPairs(deals, params)
	}

	snap := quotes.Refresh(ctx, a.quotes, pairs, a.log)
	prices := snap.Prices()
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := cmd.OutOrStdout()
	for _, k := range keys {
		fmt.Fprintf(out, "%-10s %g\n", k, prices[k])
	}
	if m := snap.Missing(); len(m) > 0 {
		fmt.Fprintf(out, "No price: %s\n", strings.Join(m, ", "))
	}
	return nil
}
