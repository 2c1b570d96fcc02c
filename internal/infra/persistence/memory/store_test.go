package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"hcsgrid/internal/catalog/core"
)

func TestSaveLatestList(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.Latest(ctx, "/plate"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	for i, id := range []string{"b", "a", "c"} {
		// saved out of chronological order on purpose
		at := base.Add(time.Duration([]int{2, 1, 3}[i]) * time.Minute)
		if err := s.Save(ctx, core.Snapshot{ID: id, Root: "/plate", ResolvedAt: at}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	latest, err := s.Latest(ctx, "/plate")
	if err != nil || latest.ID != "c" {
		t.Fatalf("latest = %+v, %v", latest, err)
	}
	list, err := s.List(ctx, "/plate")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Fatalf("unexpected order %+v", list)
	}
	if other, _ := s.List(ctx, "/other"); len(other) != 0 {
		t.Fatalf("expected empty list for unknown root, got %d", len(other))
	}
}

func TestDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := New()
	snap := core.Snapshot{ID: "x", Root: "/r", ResolvedAt: time.Now()}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, snap); !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if s.Driver() != core.DriverMemory {
		t.Fatalf("driver = %s", s.Driver())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
