// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wiretap",
	Short: "Wiretap - binary wire-protocol interception engine",
	Long: `Wiretap decodes, verifies and transforms length-prefixed binary frames
crossing a session boundary. It keeps a bounded history of recent packets,
aggregates per-method and per-status statistics, and runs configured hook
chains over traffic in flight.

Subcommands:
  replay    replay a capture dump through a fully wired interceptor
  validate  validate a configuration file`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/wiretap/config.yml",
		"config file path")

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(validateCmd)
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
