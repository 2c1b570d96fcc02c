package manifest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hcsgrid/internal/blob"
)

func storeWith(t *testing.T, files map[string]string) blob.Store {
	t.Helper()
	s := blob.NewMemory()
	for k, v := range files {
		if _, err := s.Put(context.Background(), k, strings.NewReader(v), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	return s
}

func TestResolve_CurrentSchema(t *testing.T) {
	s := storeWith(t, map[string]string{
		"root/datasets.json": `{"datasets": ["plate1", "plate2"], "default": "plate2", "extra": true}`,
		"root/versions.json": `["old"]`,
	})
	m, err := Resolve(context.Background(), s, "root")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(Manifest{Datasets: []string{"plate1", "plate2"}, Default: "plate2"}, m); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_LegacyOnly(t *testing.T) {
	s := storeWith(t, map[string]string{"versions.json": `["v1","v2"]`})
	m, err := Resolve(context.Background(), s, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if diff := cmp.Diff(Manifest{Datasets: []string{"v1", "v2"}, Default: "v1"}, m); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_InvalidCurrentFallsBack(t *testing.T) {
	cases := map[string]string{
		"bad json":        `{"datasets": [`,
		"missing default": `{"datasets": ["a"]}`,
		"unknown default": `{"datasets": ["a"], "default": "b"}`,
		"empty list":      `{"datasets": [], "default": ""}`,
		"legacy shape":    `["a"]`,
	}
	for name, doc := range cases {
		s := storeWith(t, map[string]string{"datasets.json": doc, "versions.json": `["x"]`})
		m, err := Resolve(context.Background(), s, "/")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if m.Default != "x" {
			t.Fatalf("%s: expected legacy fallback, got %+v", name, m)
		}
	}
}

func TestResolve_NotFoundChainsCause(t *testing.T) {
	s := storeWith(t, map[string]string{"versions.json": `[]`})
	_, err := Resolve(context.Background(), s, "")
	var nf *ManifestNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected ManifestNotFoundError, got %v", err)
	}
	if !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected current-schema cause to be ErrNotFound, got %v", nf.Cause)
	}
	if !errors.Is(nf.Legacy, errEmptyLegacy) {
		t.Fatalf("expected empty legacy error, got %v", nf.Legacy)
	}
	if !strings.Contains(err.Error(), CurrentFile) || !strings.Contains(err.Error(), LegacyFile) {
		t.Fatalf("error should name both files: %v", err)
	}
}

func TestResolve_LegacyTrailingDataRejected(t *testing.T) {
	for name, doc := range map[string]string{
		"garbage":         `["v1"]garbage`,
		"second document": `["v1"] ["v2"]`,
	} {
		s := storeWith(t, map[string]string{"versions.json": doc})
		_, err := Resolve(context.Background(), s, "")
		var nf *ManifestNotFoundError
		if !errors.As(err, &nf) || nf.Legacy == nil {
			t.Fatalf("%s: expected legacy decode failure, got %v", name, err)
		}
		if errors.Is(nf.Legacy, errEmptyLegacy) {
			t.Fatalf("%s: unexpected empty-list error %v", name, nf.Legacy)
		}
	}
}

type countingReader struct {
	Reader
	gets int
}

func (c *countingReader) Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error) {
	c.gets++
	return c.Reader.Get(ctx, key)
}

func TestCache_ParsesOncePerRoot(t *testing.T) {
	cr := &countingReader{Reader: storeWith(t, map[string]string{
		"a/datasets.json": `{"datasets":["d"],"default":"d"}`,
		"b/versions.json": `["v"]`,
	})}
	c := NewCache(cr)
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), "a"); err != nil {
			t.Fatalf("get a: %v", err)
		}
	}
	if cr.gets != 1 {
		t.Fatalf("expected one read, got %d", cr.gets)
	}
	if m, err := c.Get(context.Background(), "b"); err != nil || m.Default != "v" {
		t.Fatalf("get b: %+v %v", m, err)
	}
	c.Forget("a")
	if _, err := c.Get(context.Background(), "a"); err != nil || cr.gets != 4 {
		t.Fatalf("expected re-read after Forget, gets=%d err=%v", cr.gets, err)
	}
	if _, err := c.Get(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
