// Package commands implements the clarinet-probe command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configPath is the optional YAML configuration file, shared by commands
// that build a probe configuration.
var configPath string

// rootCmd is the top-level cobra command for clarinet-probe.
var rootCmd = &cobra.Command{
	Use:   "clarinet-probe",
	Short: "Diagnostic companion for the clarinet socket library",
	Long: "clarinet-probe exercises the clarinet socket library end to end:\n" +
		"it runs UDP/TCP echo endpoints, parses and canonicalizes addresses,\n" +
		"and dumps effective socket option values.",
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to configuration file (YAML)")

	rootCmd.AddCommand(echoCmd())
	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(optionsCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
