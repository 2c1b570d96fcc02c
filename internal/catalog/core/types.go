// Package core defines the catalog of persisted resolution passes. Backends
// live under internal/infra/persistence.
package core

import (
	"context"
	"errors"
	"time"
)

// Driver identifies a catalog backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// SourceRecord is the serialized form of one grid source.
type SourceRecord struct {
	Path   string            `json:"path"`
	Role   string            `json:"role"`
	Coords map[string]string `json:"coords,omitempty"`
}

// CellRecord is the serialized form of one grid cell.
type CellRecord struct {
	Position int            `json:"position"`
	Tuple    []string       `json:"tuple"`
	Sources  []SourceRecord `json:"sources"`
}

// Snapshot records the outcome of one resolution pass at a root.
type Snapshot struct {
	ID           string       `json:"id"`
	Root         string       `json:"root"`
	Kind         string       `json:"kind"`
	ResolvedAt   time.Time    `json:"resolved_at"`
	Axes         []string     `json:"axes"`
	Cells        []CellRecord `json:"cells"`
	Unstructured []string     `json:"unstructured,omitempty"`
}

// Store persists snapshots. Snapshots are append-only; the newest per root
// wins on Latest.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Latest(ctx context.Context, root string) (Snapshot, error)
	// List returns every snapshot for root, oldest first.
	List(ctx context.Context, root string) ([]Snapshot, error)
	Close() error
	Driver() Driver
}

// ErrNotFound is returned by Latest when a root has no snapshot.
var ErrNotFound = errors.New("catalog: no snapshot")

// ErrDuplicateID is returned by Save when the snapshot id is taken.
var ErrDuplicateID = errors.New("catalog: duplicate snapshot id")
