package store_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/zedigen/internal/config"
	"github.com/gyeh/zedigen/internal/db"
	"github.com/gyeh/zedigen/internal/generator"
	"github.com/gyeh/zedigen/internal/logging"
	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/refdata"
	"github.com/gyeh/zedigen/internal/store"
)

const (
	testPort     = 15433
	testDB       = "zeditest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var testDSN string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		fmt.Fprintln(os.Stderr, "SKIP: store integration tests need embedded postgres")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30 * time.Second),
	)
	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}
	os.Exit(code)
}

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS synth CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	log := logging.Setup("text")
	if n, err := db.ApplyMigrations(ctx, pool, log); err != nil || n == 0 {
		pool.Close()
		t.Fatalf("migrations: applied %d, err %v", n, err)
	}
	// second pass must be a no-op
	if n, err := db.ApplyMigrations(ctx, pool, log); err != nil || n != 0 {
		pool.Close()
		t.Fatalf("re-apply migrations: applied %d, err %v", n, err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func generate(t *testing.T, seed uint64, count int, rate float64) (*generator.Generator, []model.Record) {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = &seed
	cfg.ClaimCount = count
	cfg.AnomalyRate = rate
	g, err := generator.New(cfg,
		generator.WithClock(func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }),
		generator.WithRefData(refdata.Defaults()),
	)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := g.Run()
	if err != nil {
		t.Fatal(err)
	}
	return g, recs
}

func TestSave_RoundTripCounts(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	g, recs := generate(t, 42, 25, 1)
	run, err := store.RunFromSummary(g.Summary(), 1, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	res, err := store.Save(ctx, pool, log, run, recs)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	var wantLines, wantAnomalies int64
	for _, r := range recs {
		wantLines += int64(len(r.Claim.ServiceLines))
		wantAnomalies += int64(len(r.Anomalies))
	}
	if res.Claims != 25 || res.ServiceLines != wantLines || res.Anomalies != wantAnomalies {
		t.Errorf("result = %+v, want 25/%d/%d", res, wantLines, wantAnomalies)
	}

	counts, err := store.LoadCounts(ctx, pool, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Claims != res.Claims || counts.ServiceLines != res.ServiceLines || counts.Anomalies != res.Anomalies {
		t.Errorf("stored counts %+v differ from result %+v", counts, res)
	}

	byType, err := store.AnomaliesByType(ctx, pool, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	for typ, n := range g.Summary().AnomaliesByType {
		if byType[typ] != n {
			t.Errorf("%s: stored %d, generated %d", typ, byType[typ], n)
		}
	}

	var seed string
	if err := pool.QueryRow(ctx, "SELECT seed::text FROM synth.runs WHERE run_id = $1", run.ID).Scan(&seed); err != nil {
		t.Fatal(err)
	}
	if seed != "42" {
		t.Errorf("stored seed = %q", seed)
	}
}

func TestSave_FullUint64Seed(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()

	g, recs := generate(t, ^uint64(0), 2, 0)
	run, err := store.RunFromSummary(g.Summary(), 0, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, pool, logging.Setup("text"), run, recs); err != nil {
		t.Fatalf("Save: %v", err)
	}
	var seed string
	pool.QueryRow(ctx, "SELECT seed::text FROM synth.runs WHERE run_id = $1", run.ID).Scan(&seed)
	if seed != "18446744073709551615" {
		t.Errorf("stored seed = %q", seed)
	}
}

func TestSave_DuplicateRunRollsBack(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")

	g, recs := generate(t, 3, 5, 0)
	run, err := store.RunFromSummary(g.Summary(), 0, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, pool, log, run, recs); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save(ctx, pool, log, run, recs); err == nil {
		t.Fatal("expected primary key violation on second save")
	}

	counts, err := store.LoadCounts(ctx, pool, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if counts.Claims != 5 {
		t.Errorf("claims = %d after failed save, want 5", counts.Claims)
	}
}

func TestRunFromSummary_BadID(t *testing.T) {
	if _, err := store.RunFromSummary(model.RunSummary{RunID: "nope"}, 0, time.Now()); err == nil {
		t.Error("expected parse error")
	}
}
