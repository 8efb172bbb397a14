package db

import (
	"testing"
	"testing/fstest"

	embedsql "github.com/gyeh/zedigen/internal/sql"
)

func TestLoadMigrations_SortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"m/002_b.sql":   {Data: []byte("SELECT 2")},
		"m/001_a.sql":   {Data: []byte("SELECT 1")},
		"m/README.md":   {Data: []byte("notes")},
		"m/sub/003.sql": {Data: []byte("SELECT 3")},
	}
	got, err := LoadMigrations(fsys, "m")
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d migrations, want 2", len(got))
	}
	if got[0].Version != "001_a" || got[1].Version != "002_b" {
		t.Errorf("order = %s, %s", got[0].Version, got[1].Version)
	}
	if got[0].SQL != "SELECT 1" {
		t.Errorf("SQL = %q", got[0].SQL)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	if _, err := LoadMigrations(fstest.MapFS{}, "nope"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadMigrations_Embedded(t *testing.T) {
	got, err := LoadMigrations(embedsql.Migrations, migrationsDir)
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(got) == 0 || got[0].Version != "001_synth_schema" {
		t.Fatalf("embedded migrations = %+v", got)
	}
}

func TestPoolConfig(t *testing.T) {
	cfg, err := PoolConfig("postgres://u:p@localhost:5432/db", WithMaxConns(3), WithMaxConns(0))
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}
	params := cfg.ConnConfig.RuntimeParams
	if params["application_name"] != ApplicationName {
		t.Errorf("application_name = %q", params["application_name"])
	}
	if params["statement_timeout"] != "0" {
		t.Errorf("statement_timeout = %q", params["statement_timeout"])
	}
	if cfg.MaxConns != 3 {
		t.Errorf("MaxConns = %d, want 3", cfg.MaxConns)
	}
}

func TestPoolConfig_KeepsApplicationName(t *testing.T) {
	cfg, err := PoolConfig("postgres://localhost/db?application_name=custom")
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "custom" {
		t.Errorf("application_name = %q, want custom", got)
	}
}

func TestPoolConfig_BadDSN(t *testing.T) {
	if _, err := PoolConfig("postgres://%zz"); err == nil {
		t.Fatal("expected error")
	}
}
