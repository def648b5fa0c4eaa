package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/stufe/internal/adapters/repository"
	"github.com/okian/stufe/internal/domain/competency"
	"github.com/okian/stufe/internal/ingest"
	"github.com/okian/stufe/pkg/logger"
)

var importStorePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load CSV survey exports into a history store",
}

var importResponsesCmd = &cobra.Command{
	Use:   "responses <file>",
	Short: "Import profile survey responses from a CSV export",
	Long: `Import profile survey responses from a CSV export.

The file must carry a header row with the columns zeitpunkt, profil and
rolle; every remaining column is treated as a question id. Per-question
scores are aggregated into cluster values before storage.

Examples:
  stufectl import responses --store stufe.db export.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImportResponses,
}

var importRequirementsCmd = &cobra.Command{
	Use:   "requirements <file>",
	Short: "Import role requirement vectors from a CSV export",
	Long: `Import role requirement vectors from a CSV export.

The file must carry a header row with the columns zeitpunkt and rolle
plus one column per competency cluster, named after the cluster.

Examples:
  stufectl import requirements --store stufe.db requirements.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImportRequirements,
}

func init() {
	importCmd.PersistentFlags().StringVar(&importStorePath, "store", "stufe.db", "Path of the sqlite history database")
	importCmd.AddCommand(importResponsesCmd)
	importCmd.AddCommand(importRequirementsCmd)
	rootCmd.AddCommand(importCmd)
}

func runImportResponses(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer file.Close()

	records, err := ingest.ReadResponses(file)
	if err != nil {
		return fmt.Errorf("failed to read responses: %w", err)
	}

	store, err := repository.NewSQLiteStore(ctx, importStorePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	catalog := competency.DefaultCatalog()
	created, overwritten := 0, 0
	for _, rec := range records {
		values, err := catalog.ClusterValues(rec)
		if err != nil {
			return fmt.Errorf("profile %s at %s: %w", rec.Profile, rec.TakenAt, err)
		}
		isNew, err := store.PutSnapshot(ctx, repository.Snapshot{
			Profile: rec.Profile,
			Role:    rec.Role,
			TakenAt: rec.TakenAt,
			Values:  values,
		})
		if err != nil {
			return fmt.Errorf("profile %s at %s: %w", rec.Profile, rec.TakenAt, err)
		}
		if isNew {
			created++
		} else {
			overwritten++
		}
	}

	logger.Get().Info(ctx, "responses imported",
		logger.String("store", importStorePath),
		logger.Int("created", created),
		logger.Int("overwritten", overwritten))
	return nil
}

func runImportRequirements(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer file.Close()

	requirements, err := ingest.ReadRequirements(file, competency.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("failed to read requirements: %w", err)
	}

	store, err := repository.NewSQLiteStore(ctx, importStorePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	created, overwritten := 0, 0
	for _, req := range requirements {
		isNew, err := store.PutRequirement(ctx, req)
		if err != nil {
			return fmt.Errorf("role %s at %s: %w", req.Role, req.TakenAt, err)
		}
		if isNew {
			created++
		} else {
			overwritten++
		}
	}

	logger.Get().Info(ctx, "requirements imported",
		logger.String("store", importStorePath),
		logger.Int("created", created),
		logger.Int("overwritten", overwritten))
	return nil
}
