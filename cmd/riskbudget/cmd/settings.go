package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the risk budget",
	Long: `The settings are stored in the journal. A fresh journal starts with the
allocation section of the config file.

Examples:
  riskbudget settings show
  riskbudget settings set --total 3 --max 1.5
  riskbudget settings set --share 0.9`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the stored settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

var (
	settingsTotal float64
	settingsMax   float64
	settingsShare float64
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	f := settingsSetCmd.Flags()
	f.Float64Var(&settingsTotal, "total", 0, "total risk budget in percent of deposit")
	f.Float64Var(&settingsMax, "max", 0, "per-trade risk cap in percent")
	f.Float64Var(&settingsShare, "share", 0, "usefulness share, 0 to 1")
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total risk:       %.3f%%\n", s.TotalRisk)
	fmt.Fprintf(out, "Max per trade:    %.3f%%\n", s.MaxRisk)
	fmt.Fprintf(out, "Usefulness share: %.0f%%\n", s.UsefulnessShare*100)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.store.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("total") {
		s.TotalRisk = settingsTotal
	}
	if flags.Changed("max") {
		s.MaxRisk = settingsMax
	}
	if flags.Changed("share") {
		s.UsefulnessShare = settingsShare
	}
	if err := a.store.SaveSettings(ctx, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Settings saved")
	return nil
}
