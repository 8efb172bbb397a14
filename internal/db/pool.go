// Package db owns the Postgres connection pool, the embedded schema
// migrations, and the COPY helpers the store uses for bulk inserts.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName is reported to Postgres as application_name.
const ApplicationName = "zedigen"

// DefaultConnectTimeout bounds the initial ping.
const DefaultConnectTimeout = 10 * time.Second

// PoolOption adjusts the pool configuration before it is opened.
type PoolOption func(*pgxpool.Config)

// WithMaxConns caps the pool size. Values below 1 are ignored.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// PoolConfig parses dsn and applies the session settings every zedigen
// connection carries.
func PoolConfig(dsn string, opts ...PoolOption) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = ApplicationName
	}
	// COPY of a large run can outlive any server-side default.
	params["statement_timeout"] = "0"
	params["timezone"] = "UTC"

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// NewPool opens a pool for dsn and pings it within DefaultConnectTimeout.
func NewPool(ctx context.Context, dsn string, opts ...PoolOption) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(dsn, opts...)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.ConnConfig.Host, err)
	}
	return pool, nil
}
