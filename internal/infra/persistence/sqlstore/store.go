// Package sqlstore is the database/sql catalog shared by the sqlite and
// postgres backends. Each snapshot is one row holding a JSON payload.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"hcsgrid/internal/catalog/core"
)

// Dialect captures the per-database differences.
type Dialect struct {
	Driver core.Driver
	// Schema holds the statements creating the table and index.
	Schema []string
	// Bind renders the n-th (1-based) placeholder.
	Bind func(n int) string
	// IsUniqueViolation reports a primary-key conflict.
	IsUniqueViolation func(err error) bool
}

// Store implements core.Store over a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	insert  string
	latest  string
	list    string
}

// New applies the dialect schema and returns a ready store. The store owns db.
func New(ctx context.Context, db *sql.DB, d Dialect) (*Store, error) {
	for _, stmt := range d.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply catalog schema: %w", err)
		}
	}
	b := d.Bind
	return &Store{
		db:      db,
		dialect: d,
		insert:  fmt.Sprintf(`INSERT INTO grid_snapshots (id, root, kind, resolved_at, payload) VALUES (%s, %s, %s, %s, %s)`, b(1), b(2), b(3), b(4), b(5)),
		latest:  fmt.Sprintf(`SELECT payload FROM grid_snapshots WHERE root = %s ORDER BY resolved_at DESC, id DESC LIMIT 1`, b(1)),
		list:    fmt.Sprintf(`SELECT payload FROM grid_snapshots WHERE root = %s ORDER BY resolved_at ASC, id ASC`, b(1)),
	}, nil
}

func (s *Store) Driver() core.Driver { return s.dialect.Driver }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", snap.ID, err)
	}
	_, err = s.db.ExecContext(ctx, s.insert, snap.ID, snap.Root, snap.Kind, snap.ResolvedAt.UnixNano(), string(payload))
	if err != nil {
		if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
			return fmt.Errorf("save %s: %w", snap.ID, core.ErrDuplicateID)
		}
		return fmt.Errorf("save %s: %w", snap.ID, err)
	}
	return nil
}

func (s *Store) Latest(ctx context.Context, root string) (core.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, s.latest, root).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, fmt.Errorf("latest %s: %w", root, core.ErrNotFound)
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("latest %s: %w", root, err)
	}
	return decode(payload)
}

func (s *Store) List(ctx context.Context, root string) ([]core.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, s.list, root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", root, err)
	}
	defer func() { _ = rows.Close() }()
	var out []core.Snapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		snap, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

func decode(payload []byte) (core.Snapshot, error) {
	var snap core.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
