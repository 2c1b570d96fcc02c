// Package postgres provides the Postgres-backed catalog.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"hcsgrid/internal/catalog/core"
	"hcsgrid/internal/infra/persistence/sqlstore"
)

const (
	defaultDriver   = "pgx"
	defaultDSN      = "postgres://localhost/hcsgrid?sslmode=disable"
	uniqueViolation = "23505"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

var dialect = sqlstore.Dialect{
	Driver: core.DriverPostgres,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS grid_snapshots (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			kind TEXT NOT NULL,
			resolved_at BIGINT NOT NULL,
			payload JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS grid_snapshots_root ON grid_snapshots (root, resolved_at)`,
	},
	Bind: func(n int) string { return fmt.Sprintf("$%d", n) },
	IsUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
	},
}

// Open connects using dsn (falls back to defaultDSN), pings, and applies the
// catalog schema.
func Open(dsn string) (*sqlstore.Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	st, err := sqlstore.New(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// OverrideSQLOpen swaps the sql.Open hook for tests and returns a restore func.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
