package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hcsgrid/internal/grid"
	"hcsgrid/pkg/coords"
)

func TestFromGrid(t *testing.T) {
	g, err := grid.Assemble([]coords.Source{
		{Path: "b.tif", Role: coords.RoleImage, Coords: coords.NewRecord(coords.Entry{Axis: coords.AxisRow, Value: coords.Int(2)})},
		{Path: "a.tif", Role: coords.RoleImage, Coords: coords.NewRecord(coords.Entry{Axis: coords.AxisRow, Value: coords.Int(1)})},
	})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	s := FromGrid("id1", "root", "plate", at, g, []string{"notes.txt"})
	if s.ResolvedAt.Location() != time.UTC {
		t.Fatalf("timestamp must be UTC")
	}
	if len(s.Axes) != 1 || s.Axes[0] != "row" {
		t.Fatalf("axes = %v", s.Axes)
	}
	if len(s.Cells) != 2 || s.Cells[0].Sources[0].Path != "a.tif" || s.Cells[1].Tuple[0] != "2" {
		t.Fatalf("cells = %+v", s.Cells)
	}
	if s.Cells[0].Sources[0].Coords["row"] != "1" || len(s.Unstructured) != 1 {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}

func TestOpen(t *testing.T) {
	st, err := Open(Config{})
	if err != nil || st != nil {
		t.Fatalf("empty driver should disable catalog: %v %v", st, err)
	}
	mem, err := Open(Config{Driver: DriverMemory})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("memory: %v", err)
	}
	lite, err := Open(Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "cat.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer func() { _ = lite.Close() }()
	if err := lite.Save(context.Background(), Snapshot{ID: "x", Root: "r", ResolvedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Open(Config{Driver: "mongo"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
