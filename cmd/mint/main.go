// Command mint is a cobra CLI front end for the mod integration engine:
// it bundles local mod paks onto a reference game pak, runs the lint
// suite over a set of mod paks, and reverses a previous integration.
package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "mint",
	Short: "Builds and inspects Deep Rock Galactic mod bundles",
	Long:  `mint integrates local mod paks onto a reference DRG game pak, lints mod paks for common problems, and uninstalls a prior integration.`,
}

// Execute initializes the root command tree and delegates to Cobra for
// argument parsing and subcommand dispatch.
func Execute() {
	// Disable pterm rich output and enforce RawOutput when stdout is not
	// a terminal (e.g. CI, piped output).
	if !term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NO_COLOR") != "" {
		pterm.DisableStyling()
		pterm.RawOutput = true
	}
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
