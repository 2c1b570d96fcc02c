// Package sqlite provides the SQLite-backed catalog.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"hcsgrid/internal/catalog/core"
	"hcsgrid/internal/infra/persistence/sqlstore"
)

var dialect = sqlstore.Dialect{
	Driver: core.DriverSQLite,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS grid_snapshots (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			kind TEXT NOT NULL,
			resolved_at INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS grid_snapshots_root ON grid_snapshots (root, resolved_at)`,
	},
	Bind: func(int) string { return "?" },
	IsUniqueViolation: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

// Open creates or opens the catalog database at path (default hcsgrid.db).
func Open(path string) (*sqlstore.Store, error) {
	if path == "" {
		path = "hcsgrid.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers; SQLite would otherwise return
	// SQLITE_BUSY under concurrent passes.
	db.SetMaxOpenConns(1)
	st, err := sqlstore.New(context.Background(), db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}
