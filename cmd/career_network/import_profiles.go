package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-network/internal/config"
	"github.com/jonathan/career-network/internal/db"
	"github.com/jonathan/career-network/internal/schemas"
	"github.com/jonathan/career-network/internal/types"
)

var importProfilesCmd = &cobra.Command{
	Use:   "import-profiles <profiles.json>",
	Short: "Load directory profiles into Postgres",
	Long:  "Validates a JSON array of directory profiles and upserts each one by profileId. Requires DATABASE_URL.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportProfiles,
}

func init() {
	rootCmd.AddCommand(importProfilesCmd)
}

func runImportProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	profiles, err := loadProfiles(args[0])
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		return err
	}

	for _, p := range profiles {
		if err := database.UpsertProfile(ctx, p); err != nil {
			return err
		}
		logger.Debug("profile imported", zap.String("profile_id", p.ProfileID))
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d profiles\n", len(profiles))
	return nil
}

func loadProfiles(path string) ([]types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}
	if err := schemas.Validate(schemas.Profiles, data); err != nil {
		return nil, fmt.Errorf("invalid profiles file %s: %w", path, err)
	}

	var profiles []types.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	return profiles, nil
}
