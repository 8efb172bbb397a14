// mkfixture writes a reproducible set of sample outputs (X12, JSON, Parquet)
// from one seeded run, for use as golden files and for downstream parsers.
// Usage: go run ./cmd/mkfixture --out testdata --seed 42 --count 50
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gyeh/zedigen/internal/config"
	"github.com/gyeh/zedigen/internal/conformance"
	"github.com/gyeh/zedigen/internal/generator"
	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/parquetread"
)

// fixtureTime pins every timestamp so fixtures are byte-stable.
var fixtureTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func main() {
	outDir := flag.String("out", "testdata", "output directory")
	seed := flag.Uint64("seed", 42, "generation seed")
	count := flag.Int("count", 50, "claims per fixture")
	rate := flag.Float64("anomaly-rate", 0.2, "anomaly base rate")
	dataDir := flag.String("data-dir", "", "reference data directory")
	checkOnly := flag.Bool("check", false, "only print stats of existing fixtures, don't write")
	flag.Parse()

	if *checkOnly {
		check(*outDir)
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	files := map[string]string{
		"x12":     "sample.x12",
		"json":    "sample.json",
		"parquet": "sample.parquet",
	}
	for _, format := range []string{"x12", "json", "parquet"} {
		c := config.Default()
		c.Seed = seed
		c.ClaimCount = *count
		c.AnomalyRate = *rate
		c.DataDir = *dataDir
		c.Format = format

		g, err := generator.New(c, generator.WithClock(func() time.Time { return fixtureTime }))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", format, err)
			os.Exit(1)
		}
		b, err := g.Bytes()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", format, err)
			os.Exit(1)
		}
		path := filepath.Join(*outDir, files[format])
		if err := os.WriteFile(path, b, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
			os.Exit(1)
		}
		sum := g.Summary()
		fmt.Printf("Wrote %s: %d claims, %d anomalies, %d bytes\n",
			path, sum.ClaimsGenerated, sum.AnomalyCount(), len(b))
	}
}

func check(dir string) {
	x12Path := filepath.Join(dir, "sample.x12")
	data, err := os.ReadFile(x12Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", x12Path, err)
		os.Exit(1)
	}
	res := conformance.Check(string(data))
	fmt.Printf("%s: %d/%d required segments\n", x12Path, res.Found, res.Total)

	pqPath := filepath.Join(dir, "sample.parquet")
	r, err := parquetread.Open(pqPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer r.Close()
	rows, err := r.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	sum := parquetread.Summarize(rows)
	fmt.Printf("%s: %d rows, %d claims, %d anomalous\n", pqPath, sum.Rows, sum.Claims, sum.AnomalousClaims)
	fmt.Println("Anomaly distribution:")
	for _, t := range model.AllAnomalyTypes {
		if n := sum.AnomalyTypes[string(t)]; n > 0 {
			fmt.Printf("  %-28s %d\n", t, n)
		}
	}
}
