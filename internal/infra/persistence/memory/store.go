// Package memory implements an in-memory catalog for tests and one-shot runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hcsgrid/internal/catalog/core"
)

// Compile-time contract assertion ensuring the store satisfies the catalog interface.
var _ core.Store = (*Store)(nil)

// Store keeps snapshots per root in process memory.
type Store struct {
	mu     sync.RWMutex
	byRoot map[string][]core.Snapshot
	ids    map[string]struct{}
}

// New returns an empty store.
func New() *Store {
	return &Store{byRoot: make(map[string][]core.Snapshot), ids: make(map[string]struct{})}
}

func (s *Store) Driver() core.Driver { return core.DriverMemory }

func (s *Store) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.ids[snap.ID]; dup {
		return fmt.Errorf("save %s: %w", snap.ID, core.ErrDuplicateID)
	}
	s.ids[snap.ID] = struct{}{}
	list := append(s.byRoot[snap.Root], snap)
	sort.SliceStable(list, func(i, j int) bool { return list[i].ResolvedAt.Before(list[j].ResolvedAt) })
	s.byRoot[snap.Root] = list
	return nil
}

func (s *Store) Latest(_ context.Context, root string) (core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byRoot[root]
	if len(list) == 0 {
		return core.Snapshot{}, fmt.Errorf("latest %s: %w", root, core.ErrNotFound)
	}
	return list[len(list)-1], nil
}

func (s *Store) List(_ context.Context, root string) ([]core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Snapshot(nil), s.byRoot[root]...), nil
}

func (s *Store) Close() error { return nil }
