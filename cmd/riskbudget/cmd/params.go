package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/journal"
	"github.com/rustyeddy/riskbudget/market/quotes"
	"github.com/rustyeddy/riskbudget/risk"
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Edit the allocation knobs of a deal",
	Long: `Show or change the per-deal parameters the allocator reads: enabled,
ATR, price mode, manual price and the entry/SL/TP overrides.

Switching to manual mode without --price keeps the current market price
as the manual price.

Examples:
  riskbudget params show 01J9Z...
  riskbudget params set 01J9Z... --atr 0.0065
  riskbudget params set 01J9Z... --mode manual
  riskbudget params set 01J9Z... --enabled=false`,
}

var paramsShowCmd = &cobra.Command{
	Use:   "show <deal-id>",
	Short: "Print the effective params of a deal",
	Args:  cobra.ExactArgs(1),
	RunE:  runParamsShow,
}

var paramsSetCmd = &cobra.Command{
	Use:   "set <deal-id>",
	Short: "Change the params of a deal",
	Args:  cobra.ExactArgs(1),
	RunE:  runParamsSet,
}

var (
	paramsEnabled bool
	paramsATR     float64
	paramsMode    string
	paramsPrice   float64
	paramsEntry   float64
	paramsSL      float64
	paramsTP      float64
	paramsOffline bool
)

func init() {
	rootCmd.AddCommand(paramsCmd)
	paramsCmd.AddCommand(paramsShowCmd)
	paramsCmd.AddCommand(paramsSetCmd)

	f := paramsSetCmd.Flags()
	f.BoolVar(&paramsEnabled, "enabled", true, "include the deal in the allocation")
	f.Float64Var(&paramsATR, "atr", 0, "average true range in price units")
	f.StringVar(&paramsMode, "mode", "", "price mode: auto or manual")
	f.Float64Var(&paramsPrice, "price", 0, "manual current price")
	f.Float64Var(&paramsEntry, "entry", 0, "entry override")
	f.Float64Var(&paramsSL, "sl", 0, "stop loss override")
	f.Float64Var(&paramsTP, "tp", 0, "take profit override")
	f.BoolVar(&paramsOffline, "offline", false, "do not fetch a price when switching to manual")
}

func runParamsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.store.GetDeal(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get deal: %w", err)
	}
	params, err := a.store.LoadParams(ctx)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(risk.DefaultParams(d, params[d.ID]))
}

func runParamsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.store.GetDeal(ctx, args[0])
	if errors.Is(err, journal.ErrNotFound) {
		return fmt.Errorf("no deal %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("get deal: %w", err)
	}
	all, err := a.store.LoadParams(ctx)
	if err != nil {
		return fmt.Errorf("load params: %w", err)
	}
	p := all[d.ID]

	flags := cmd.Flags()
	if flags.Changed("enabled") {
		p.Enabled = &paramsEnabled
	}
	if v := flagFloat(cmd, "atr", paramsATR); v != nil {
		p.ATR = v
	}
	if v := flagFloat(cmd, "price", paramsPrice); v != nil {
		p.ManualPrice = v
	}
	if v := flagFloat(cmd, "entry", paramsEntry); v != nil {
		p.Entry = v
	}
	if v := flagFloat(cmd, "sl", paramsSL); v != nil {
		p.StopLoss = v
	}
	if v := flagFloat(cmd, "tp", paramsTP); v != nil {
		p.TakeProfit = v
	}

	if flags.Changed("mode") {
		mode := risk.PriceMode(paramsMode)
		if mode != risk.PriceAuto && mode != risk.PriceManual {
			return fmt.Errorf("unknown price mode %q", paramsMode)
		}
		var pairs []string
		if mode == risk.PriceManual && p.ManualPrice == nil && !paramsOffline {
			pairs = []string{d.Pair}
		}
		snap := quotes.Refresh(ctx, a.quotes, pairs, a.log)
		p = risk.SwitchMode(p, d.Pair, mode, snap)
	}

	if err := a.store.SaveParams(ctx, d.ID, p); err != nil {
		return fmt.Errorf("save params: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s %s (%s)\n", d.ID, d.Pair, p.Mode())
	return nil
}
