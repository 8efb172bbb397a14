package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/zedigen/internal/config"
	"github.com/gyeh/zedigen/internal/exitcode"
	"github.com/gyeh/zedigen/internal/logging"
)

// DSNEnv names the environment variable read for --dsn.
const DSNEnv = "ZEDI_GEN_DB_URL"

var (
	cfg      = config.Default()
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "zedigen",
	Short:        "Synthetic X12 835 claim generator",
	Long:         "Generates synthetic healthcare claims with controlled anomalies and writes them as X12 835, JSON or Parquet.",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv(DSNEnv), "Postgres connection string (or set "+DSNEnv+")")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// setupLogger builds the command logger and exits on a bad level.
func setupLogger() zerolog.Logger {
	log, err := logging.WithLevel(logging.Setup(cfg.LogFormat), logLevel)
	if err != nil {
		log.Error().Err(err).Str("level", logLevel).Msg("invalid log level")
		os.Exit(exitcode.UsageError)
	}
	return log
}
