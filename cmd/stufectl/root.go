package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/stufe/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "stufectl",
	Short: "Administration tool for the stufe assessment service",
	Long: `stufectl manages competency histories for the stufe assessment service.

Core Commands:
  import responses     Load profile survey exports (CSV) into a history store
  import requirements  Load role requirement exports (CSV) into a history store
  seed                 Generate and submit demo histories to a running server`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Init(); err != nil {
			return err
		}
		if verbose {
			_ = logger.SetLevelString("debug")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
