package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/stufe/internal/demodata"
	"github.com/okian/stufe/pkg/logger"
)

var (
	seedURL      string
	seedProfiles int
	seedRoles    int
	seedYears    int
	seedSeed     int64
	seedTimeout  time.Duration
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate and submit demo histories to a running server",
	Long: `Generate synthetic profile histories and role requirements and
submit them to a running stufe server.

Each profile gets one snapshot per year with cluster scores drifting
over time, so forecasts and similarity queries return non-trivial
results right after seeding.

Examples:
  stufectl seed
  stufectl seed --url http://localhost:8080 --profiles 50 --years 6
  stufectl seed --seed 42`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedURL, "url", "http://localhost:9080", "Base URL of the running server")
	seedCmd.Flags().IntVar(&seedProfiles, "profiles", 0, "Number of profiles to generate (default 20)")
	seedCmd.Flags().IntVar(&seedRoles, "roles", 0, "Number of roles to generate (default 4)")
	seedCmd.Flags().IntVar(&seedYears, "years", 0, "History depth in years (default 4)")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 0, "Random seed for reproducible data (0 = time-based)")
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", 0, "HTTP request timeout (default 30s)")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := demodata.NewConfig(seedURL)
	if seedProfiles > 0 {
		cfg.Profiles = seedProfiles
	}
	if seedRoles > 0 {
		cfg.Roles = seedRoles
	}
	if seedYears > 0 {
		cfg.Years = seedYears
	}
	if seedTimeout > 0 {
		cfg.Timeout = seedTimeout
	}
	cfg.Seed = seedSeed
	cfg.Verbose = verbose

	stats, err := demodata.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	logger.Get().Info(cmd.Context(), "seeding completed",
		logger.Int("responses", stats.ResponsesGenerated),
		logger.Int("requirements", stats.RequirementsGenerated),
		logger.Int("successful", stats.Successful),
		logger.Int("failed", stats.Failed),
		logger.String("duration", stats.Duration.String()))

	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.Failed, stats.Submitted)
	}
	return nil
}
