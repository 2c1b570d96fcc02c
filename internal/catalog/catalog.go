// Package catalog re-exports the catalog abstractions, selects a backend and
// converts assembled grids into snapshots.
package catalog

import (
	"fmt"
	"time"

	"hcsgrid/internal/catalog/core"
	"hcsgrid/internal/grid"
	"hcsgrid/internal/infra/persistence/memory"
	"hcsgrid/internal/infra/persistence/postgres"
	"hcsgrid/internal/infra/persistence/sqlite"
)

type (
	Driver       = core.Driver
	Snapshot     = core.Snapshot
	CellRecord   = core.CellRecord
	SourceRecord = core.SourceRecord
	Store        = core.Store
)

const (
	DriverMemory   = core.DriverMemory
	DriverSQLite   = core.DriverSQLite
	DriverPostgres = core.DriverPostgres
)

var (
	ErrNotFound    = core.ErrNotFound
	ErrDuplicateID = core.ErrDuplicateID
)

// Config selects a backend. DSN is a file path for sqlite and a connection
// string for postgres.
type Config struct {
	Driver Driver
	DSN    string
}

// Open constructs the configured backend. An empty driver disables the
// catalog and returns (nil, nil).
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		st, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	case DriverPostgres:
		st, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown catalog driver %s", cfg.Driver)
	}
}

// FromGrid serializes g into a snapshot.
func FromGrid(id, root, kind string, at time.Time, g *grid.Grid, unstructured []string) Snapshot {
	axes := g.Axes()
	s := Snapshot{ID: id, Root: root, Kind: kind, ResolvedAt: at.UTC(), Axes: make([]string, len(axes)), Cells: make([]CellRecord, 0, g.Len())}
	for i, a := range axes {
		s.Axes[i] = string(a)
	}
	for _, c := range g.Cells() {
		cr := CellRecord{Position: c.Position, Tuple: make([]string, len(c.Tuple)), Sources: make([]SourceRecord, 0, len(c.Sources))}
		for i, v := range c.Tuple {
			cr.Tuple[i] = v.String()
		}
		for _, src := range c.Sources {
			cr.Sources = append(cr.Sources, SourceRecord{Path: src.Path, Role: string(src.Role), Coords: src.Coords.Map()})
		}
		s.Cells = append(s.Cells, cr)
	}
	if len(unstructured) > 0 {
		s.Unstructured = append([]string(nil), unstructured...)
	}
	return s
}
