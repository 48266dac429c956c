package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskbudget/market"
	"github.com/rustyeddy/riskbudget/risk"
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Profit, loss and margin of a single trade",
	Long: `Estimate profit at take profit, loss at stop and the margin of one trade,
converted into the deposit currency.

Example:
  riskbudget calc --pair USDJPY --open 150 --tp 152 --sl 149 --lots 0.5 --leverage 100`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

var (
	calcPair     string
	calcCurrency string
	calcIn       risk.CalcInputs
)

func init() {
	rootCmd.AddCommand(calcCmd)

	f := calcCmd.Flags()
	f.StringVarP(&calcPair, "pair", "p", "", "instrument (required)")
	f.StringVar(&calcCurrency, "currency", "", "deposit currency (default from config)")
	f.Float64Var(&calcIn.Deposit, "deposit", 0, "deposit (default from config)")
	f.Float64Var(&calcIn.Open, "open", 0, "entry price")
	f.Float64Var(&calcIn.TakeProfit, "tp", 0, "take profit")
	f.Float64Var(&calcIn.StopLoss, "sl", 0, "stop loss")
	f.Float64Var(&calcIn.Lots, "lots", 0.01, "volume in lots")
	f.Float64Var(&calcIn.Leverage, "leverage", 100, "account leverage")
	calcCmd.MarkFlagRequired("pair")
}

func runCalc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	in := calcIn
	if in.Deposit == 0 {
		in.Deposit = a.cfg.Account.Deposit
	}
	cur := calcCurrency
	if cur == "" {
		cur = a.cfg.Account.Currency
	}

	inst, err := market.Lookup(calcPair, cur)
	if err != nil {
		return err
	}
	in.ContractSize = inst.ContractSize
	in.Rate, err = market.QuoteToDepositRate(ctx, inst, cur, a.quotes)
	if err != nil {
		return err
	}

	res, err := risk.Calculate(in)
	if err != nil {
		return err
	}

	side := "SELL"
	if res.Buy {
		side = "BUY"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %.2f %s\n", side, in.Lots, inst.Name)
	fmt.Fprintf(out, "  Profit:  %.2f %s (%.2f%% of deposit, %.2f%% of position)\n", res.Profit, cur, res.ProfitDepPct, res.ProfitPosPct)
	fmt.Fprintf(out, "  Loss:    %.2f %s (%.2f%% of deposit, %.2f%% of position)\n", res.Loss, cur, res.LossDepPct, res.LossPosPct)
	fmt.Fprintf(out, "  Margin:  %.2f %s\n", res.Margin, cur)
	fmt.Fprintf(out, "  Max lots: %.2f\n", res.MaxLots)
	return nil
}
