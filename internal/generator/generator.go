// Package generator wires the population, claim and anomaly generators into
// a single seeded run and renders the result.
package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/zedigen/internal/anomaly"
	"github.com/gyeh/zedigen/internal/claims"
	"github.com/gyeh/zedigen/internal/config"
	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/population"
	"github.com/gyeh/zedigen/internal/refdata"
	"github.com/gyeh/zedigen/internal/render"
	"github.com/gyeh/zedigen/internal/rng"
	"github.com/gyeh/zedigen/internal/x12"
)

// RenderingProviderRate is the chance a claim carries a rendering provider.
const RenderingProviderRate = 0.5

// ProgressFunc is called after each claim with the number done so far.
type ProgressFunc func(done, total int)

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now for every timestamp the run produces.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) { g.progress = fn }
}

// WithRefData skips loading vocabularies from the data directory.
func WithRefData(ref *refdata.Set) Option {
	return func(g *Generator) { g.ref = ref }
}

// Generator owns one run. It is not safe for concurrent use.
type Generator struct {
	cfg    config.Config
	format render.Format
	seed   uint64

	now      func() time.Time
	log      zerolog.Logger
	progress ProgressFunc
	ref      *refdata.Set

	pop      *population.Generator
	claims   *claims.Generator
	injector *anomaly.Injector
	encoder  *x12.Encoder

	summary model.RunSummary
}

// New validates cfg and builds every component. Each component draws from
// its own stream derived from the run seed; an unset seed is drawn from the
// operating system and logged so the run can be replayed.
func New(cfg config.Config, opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: cfg,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(g)
	}

	if err := cfg.Validate(); err != nil {
		return nil, wrap(KindConfig, err)
	}
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return nil, wrap(KindConfig, err)
	}
	g.format = format
	ac, err := cfg.AnomalyConfig()
	if err != nil {
		return nil, wrap(KindConfig, err)
	}

	if cfg.Seed != nil {
		g.seed = *cfg.Seed
	} else {
		g.seed = rng.NewSeed()
		g.log.Info().Uint64("seed", g.seed).Msg("no seed given, drew one")
	}

	if g.ref == nil {
		dir := refdata.DataDir(cfg.DataDir)
		g.ref = refdata.Load(os.DirFS(dir), g.log)
		g.log.Debug().Str("data_dir", dir).Interface("origins", g.ref.Origins()).Msg("reference data loaded")
	}

	stream := func(n uint64) *rng.Source { return rng.New(rng.SubSeed(g.seed, n)) }
	g.pop = population.New(stream(rng.StreamPopulation), g.ref, g.now)
	g.claims = claims.New(stream(rng.StreamClaims), g.ref, g.now)
	g.injector = anomaly.New(ac, stream(rng.StreamAnomalies), anomaly.NewSeenSet(), g.log)
	g.encoder = x12.NewEncoder(x12.NewControlNumbers(stream(rng.StreamControlNumbers), g.now), g.now)

	g.summary = model.RunSummary{
		RunID:           uuid.NewString(),
		Seed:            g.seed,
		Format:          string(format),
		AnomaliesByType: make(map[model.AnomalyType]int),
	}
	return g, nil
}

// Seed returns the master seed of the run.
func (g *Generator) Seed() uint64 { return g.seed }

// Summary returns the metrics gathered so far.
func (g *Generator) Summary() model.RunSummary { return g.summary }

// Record produces one claim with its anomalies. The claim is checked against
// its generation invariants before any anomaly is injected.
func (g *Generator) Record() (model.Record, error) {
	patient := g.pop.GeneratePerson()
	billing := g.pop.GenerateProvider()
	var rendering *model.Provider
	if g.pop.Bool(RenderingProviderRate) {
		p := g.pop.GenerateProvider()
		rendering = &p
	}

	claim := g.claims.GenerateClaim(patient, billing, rendering)
	if err := claims.Validate(&claim); err != nil {
		return model.Record{}, wrap(KindValidation, err)
	}
	anomalies := g.injector.Inject(&claim)

	g.summary.ClaimsGenerated++
	if len(anomalies) > 0 {
		g.summary.ClaimsAnomalous++
	}
	for _, a := range anomalies {
		g.summary.AnomaliesByType[a.Type]++
	}
	return model.Record{Claim: claim, Anomalies: anomalies}, nil
}

// Run generates the configured number of records without rendering them.
func (g *Generator) Run() ([]model.Record, error) {
	start := g.now()
	total := g.cfg.ClaimCount
	records := make([]model.Record, 0, total)
	for i := 0; i < total; i++ {
		r, err := g.Record()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
		if g.progress != nil {
			g.progress(i+1, total)
		}
	}
	g.summary.DurationGenerate = g.now().Sub(start)
	return records, nil
}

// Render encodes records in the configured format.
func (g *Generator) Render(records []model.Record) ([]byte, error) {
	start := g.now()
	b, err := render.Render(g.format, records, g.encoder)
	if err != nil {
		return nil, wrap(KindSerialization, err)
	}
	g.summary.DurationRender = g.now().Sub(start)
	return b, nil
}

// Generate runs the whole batch and writes the rendered document to w in a
// single call. It returns the number of bytes written.
func (g *Generator) Generate(w io.Writer) (int, error) {
	start := g.now()
	records, err := g.Run()
	if err != nil {
		return 0, err
	}
	_, n, err := g.Emit(w, records)
	g.summary.DurationTotal = g.now().Sub(start)
	return n, err
}

// Emit renders records and writes them to w in a single call, returning the
// rendered document as well.
func (g *Generator) Emit(w io.Writer, records []model.Record) ([]byte, int, error) {
	b, err := g.Render(records)
	if err != nil {
		return nil, 0, err
	}
	n, err := w.Write(b)
	g.summary.BytesWritten = n
	if err != nil {
		return b, n, wrap(KindIO, fmt.Errorf("write output: %w", err))
	}
	if n != len(b) {
		return b, n, wrap(KindIO, io.ErrShortWrite)
	}

	g.log.Info().
		Str("run_id", g.summary.RunID).
		Uint64("seed", g.seed).
		Str("format", string(g.format)).
		Int("claims", g.summary.ClaimsGenerated).
		Int("anomalous_claims", g.summary.ClaimsAnomalous).
		Int("anomalies", g.summary.AnomalyCount()).
		Int("bytes", n).
		Msg("generation complete")
	return b, n, nil
}

// Bytes renders a full run into memory.
func (g *Generator) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := g.Generate(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
