package db

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	embedsql "github.com/gyeh/zedigen/internal/sql"
)

const migrationsDir = "migrations"

const createVersionTable = `CREATE SCHEMA IF NOT EXISTS synth;
CREATE TABLE IF NOT EXISTS synth.schema_migrations (
    version     text PRIMARY KEY,
    applied_at  timestamptz NOT NULL DEFAULT now()
)`

// Migration is one embedded DDL file. Version is the file name without
// its .sql suffix.
type Migration struct {
	Version string
	SQL     string
}

// LoadMigrations reads every .sql file under dir in fsys, sorted by name.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		out = append(out, Migration{
			Version: strings.TrimSuffix(e.Name(), ".sql"),
			SQL:     string(data),
		})
	}
	slices.SortFunc(out, func(a, b Migration) int { return strings.Compare(a.Version, b.Version) })
	return out, nil
}

// ApplyMigrations applies the embedded migrations not yet recorded in
// synth.schema_migrations, each in its own transaction, and returns how many
// ran.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (int, error) {
	migrations, err := LoadMigrations(embedsql.Migrations, migrationsDir)
	if err != nil {
		return 0, err
	}
	if _, err := pool.Exec(ctx, createVersionTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		ran, err := applyOne(ctx, pool, m)
		if err != nil {
			return applied, err
		}
		if !ran {
			log.Debug().Str("version", m.Version).Msg("migration already applied")
			continue
		}
		log.Info().Str("version", m.Version).Msg("migration applied")
		applied++
	}
	return applied, nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, m Migration) (bool, error) {
	ran := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM synth.schema_migrations WHERE version = $1)`,
			m.Version).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO synth.schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
			return err
		}
		ran = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("migration %s: %w", m.Version, err)
	}
	return ran, nil
}
