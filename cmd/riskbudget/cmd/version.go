package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the riskbudget CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "riskbudget version %s\n", version)
		fmt.Fprintln(out, "Risk budget allocation for planned trades")
		fmt.Fprintln(out, "https://github.com/rustyeddy/riskbudget")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
