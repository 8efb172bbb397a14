package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/zedigen/internal/db"
	"github.com/gyeh/zedigen/internal/exitcode"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the synth schema migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := setupLogger()
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or " + DSNEnv + " is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	applied, err := db.ApplyMigrations(ctx, pool, log)
	if err != nil {
		log.Error().Err(err).Int("applied", applied).Msg("migration failed")
		os.Exit(exitcode.StoreError)
	}

	log.Info().Int("applied", applied).Msg("schema up to date")
	return nil
}
