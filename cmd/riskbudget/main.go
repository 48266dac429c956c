package main

import (
	"os"

	"github.com/rustyeddy/riskbudget/cmd/riskbudget/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
