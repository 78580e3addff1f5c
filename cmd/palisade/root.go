package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "palisade",
	Short: "Palisade - security control allocation for system intake",
	Long: `Palisade decides how many security controls a system must implement and
at what level of effort it will be assessed, from the data classifications
declared at intake.

It runs as an HTTP intake service and as a command-line tool, providing:
  - First-match-wins rule chain evaluation over classification selections
  - Fast-track routing for submissions on a pre-approved intake template
  - Git-backed template distribution with sync, history, and rollback
  - Prometheus metrics, scheduled decision stats, and OTLP tracing

For more information, visit: https://github.com/bastion-hq/palisade`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
