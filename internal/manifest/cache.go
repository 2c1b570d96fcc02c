package manifest

import (
	"context"
	"sync"
)

// Cache memoizes one manifest per root. A failed resolution is not cached.
type Cache struct {
	r       Reader
	mu      sync.Mutex
	entries map[string]Manifest
}

// NewCache wraps r.
func NewCache(r Reader) *Cache {
	return &Cache{r: r, entries: make(map[string]Manifest)}
}

// Get returns the manifest for root, parsing it on first use.
func (c *Cache) Get(ctx context.Context, root string) (Manifest, error) {
	c.mu.Lock()
	m, ok := c.entries[root]
	c.mu.Unlock()
	if ok {
		return m, nil
	}
	m, err := Resolve(ctx, c.r, root)
	if err != nil {
		return Manifest{}, err
	}
	c.mu.Lock()
	c.entries[root] = m
	c.mu.Unlock()
	return m, nil
}

// Forget drops the cached manifest for root.
func (c *Cache) Forget(root string) {
	c.mu.Lock()
	delete(c.entries, root)
	c.mu.Unlock()
}
