package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gyeh/zedigen/internal/config"
	"github.com/gyeh/zedigen/internal/db"
	"github.com/gyeh/zedigen/internal/exitcode"
	"github.com/gyeh/zedigen/internal/generator"
	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/sink"
	"github.com/gyeh/zedigen/internal/store"
)

var genFlags struct {
	count        int
	anomalyRate  float64
	output       string
	seed         uint64
	dataDir      string
	format       string
	configPath   string
	saveConfig   string
	anomalyTypes []string
	logAnomalies bool
	progress     bool
	store        bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a batch of synthetic claims",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVarP(&genFlags.count, "count", "n", config.DefaultClaimCount, "Number of claims to generate")
	f.Float64Var(&genFlags.anomalyRate, "anomaly-rate", config.DefaultAnomalyRate, "Probability a claim enters anomaly injection (0-1)")
	f.StringVarP(&genFlags.output, "output", "o", "-", "Output path, s3://bucket/key, or - for stdout")
	f.Uint64Var(&genFlags.seed, "seed", 0, "Seed for reproducible output (random when unset)")
	f.StringVar(&genFlags.dataDir, "data-dir", "", "Reference data directory (default $ZEDI_GEN_DATA_DIR or ./data)")
	f.StringVarP(&genFlags.format, "format", "f", config.DefaultFormat, "Output format: x12, json, json-pretty, parquet")
	f.StringVar(&genFlags.configPath, "config", "", "YAML config file; flags given explicitly override it")
	f.StringVar(&genFlags.saveConfig, "save-config", "", "Write the resolved config to this YAML file")
	f.StringArrayVar(&genFlags.anomalyTypes, "anomaly-type", nil, "Per-type rate override Type=P (repeatable)")
	f.BoolVar(&genFlags.logAnomalies, "log-anomalies", false, "Log every injected anomaly")
	f.BoolVar(&genFlags.progress, "progress", false, "Show a progress bar on stderr")
	f.BoolVar(&genFlags.store, "store", false, "Also store the run in Postgres (needs --dsn)")
	rootCmd.AddCommand(generateCmd)
}

// resolveConfig layers defaults, the config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	c := config.Default()
	c.DSN = cfg.DSN
	c.LogFormat = cfg.LogFormat

	if genFlags.configPath != "" {
		if err := c.LoadFromFile(genFlags.configPath); err != nil {
			return c, err
		}
	}

	f := cmd.Flags()
	if f.Changed("count") {
		c.ClaimCount = genFlags.count
	}
	if f.Changed("anomaly-rate") {
		c.AnomalyRate = genFlags.anomalyRate
	}
	if f.Changed("output") {
		c.OutputPath = genFlags.output
	}
	if f.Changed("seed") {
		seed := genFlags.seed
		c.Seed = &seed
	}
	if f.Changed("data-dir") {
		c.DataDir = genFlags.dataDir
	}
	if f.Changed("format") {
		c.Format = genFlags.format
	}
	if f.Changed("log-anomalies") {
		c.LogAnomalies = genFlags.logAnomalies
	}
	c.Progress = genFlags.progress

	overrides, err := parseAnomalyTypes(genFlags.anomalyTypes)
	if err != nil {
		return c, err
	}
	if len(overrides) > 0 && c.AnomalyTypeRates == nil {
		c.AnomalyTypeRates = make(map[string]float64, len(overrides))
	}
	for name, rate := range overrides {
		c.AnomalyTypeRates[name] = rate
	}
	return c, nil
}

// parseAnomalyTypes reads Type=P pairs. Names are checked later by
// config validation.
func parseAnomalyTypes(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, val, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--anomaly-type %q: want Type=P", p)
		}
		rate, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("--anomaly-type %q: %w", p, err)
		}
		out[strings.TrimSpace(name)] = rate
	}
	return out, nil
}

func kindExitCode(k generator.Kind) int {
	switch k {
	case generator.KindConfig:
		return exitcode.ConfigError
	case generator.KindValidation:
		return exitcode.ValidationError
	case generator.KindSerialization:
		return exitcode.SerializationError
	case generator.KindIO:
		return exitcode.IOError
	default:
		return exitcode.GenerationError
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := setupLogger()
	ctx := context.Background()
	start := time.Now()

	c, err := resolveConfig(cmd)
	if err != nil {
		log.Error().Err(err).Msg("config resolution failed")
		os.Exit(exitcode.ConfigError)
	}
	if genFlags.store {
		err = c.ValidateWithDSN()
	} else {
		err = c.Validate()
	}
	if err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.ConfigError)
	}
	if genFlags.saveConfig != "" {
		if err := c.SaveToFile(genFlags.saveConfig); err != nil {
			log.Error().Err(err).Msg("failed to save config")
			os.Exit(exitcode.IOError)
		}
		log.Info().Str("path", genFlags.saveConfig).Msg("config saved")
	}

	opts := []generator.Option{generator.WithLogger(log)}
	if c.Progress {
		opts = append(opts, generator.WithProgress(progressBar(c.ClaimCount, log)))
	}
	g, err := generator.New(c, opts...)
	if err != nil {
		log.Error().Err(err).Msg("generator setup failed")
		os.Exit(kindExitCode(generator.KindOf(err)))
	}

	log.Info().
		Int("count", c.ClaimCount).
		Float64("anomaly_rate", c.AnomalyRate).
		Str("format", c.Format).
		Uint64("seed", g.Seed()).
		Msg("generating claims")

	records, err := g.Run()
	if err != nil {
		log.Error().Err(err).Msg("generation failed")
		os.Exit(kindExitCode(generator.KindOf(err)))
	}

	target, err := sink.Parse(c.OutputPath)
	if err != nil {
		log.Error().Err(err).Msg("invalid output target")
		os.Exit(exitcode.UsageError)
	}
	w, err := sink.Open(ctx, c.OutputPath)
	if err != nil {
		log.Error().Err(err).Str("output", target.String()).Msg("failed to open output")
		os.Exit(exitcode.IOError)
	}
	if _, _, err := g.Emit(w, records); err != nil {
		w.Close()
		log.Error().Err(err).Msg("failed to write output")
		os.Exit(kindExitCode(generator.KindOf(err)))
	}
	if err := w.Close(); err != nil {
		log.Error().Err(err).Str("output", target.String()).Msg("failed to finish output")
		os.Exit(exitcode.IOError)
	}

	if genFlags.store {
		storeRecords(ctx, log, c, g, records)
	}

	sum := g.Summary()
	log.Info().
		Str("output", target.String()).
		Int("claims", sum.ClaimsGenerated).
		Int("anomalies", sum.AnomalyCount()).
		Int("bytes", sum.BytesWritten).
		Str("total_duration", time.Since(start).String()).
		Msg("done")
	return nil
}

// storeRecords writes the run to Postgres, exiting on failure.
func storeRecords(ctx context.Context, log zerolog.Logger, c config.Config, g *generator.Generator, records []model.Record) {
	pool, err := db.NewPool(ctx, c.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	run, err := store.RunFromSummary(g.Summary(), c.AnomalyRate, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("invalid run id")
		os.Exit(exitcode.StoreError)
	}
	if _, err := store.Save(ctx, pool, log, run, records); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("failed to store run")
		os.Exit(exitcode.StoreError)
	}
}

func progressBar(total int, log zerolog.Logger) generator.ProgressFunc {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("generating claims"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	return func(done, _ int) {
		if err := bar.Set(done); err != nil {
			log.Warn().Err(err).Msg("failed to update progress bar")
		}
	}
}
