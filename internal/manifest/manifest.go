// Package manifest reads the dataset listing published at a data-source
// root. Two schema generations are supported because published roots are
// never rewritten: datasets.json (current) and versions.json (legacy).
package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"hcsgrid/internal/blob"
)

const (
	CurrentFile = "datasets.json"
	LegacyFile  = "versions.json"
)

// Manifest lists the datasets available at a root in published order.
type Manifest struct {
	Datasets []string `json:"datasets"`
	Default  string   `json:"default"`
}

// Has reports whether name is a listed dataset.
func (m Manifest) Has(name string) bool {
	for _, d := range m.Datasets {
		if d == name {
			return true
		}
	}
	return false
}

// Reader is the slice of blob.Store the resolver needs.
type Reader interface {
	Get(ctx context.Context, key string) (blob.Info, io.ReadCloser, error)
}

// ManifestNotFoundError means neither schema could be read at Root. Cause is
// the current-schema failure; Legacy the fallback failure.
type ManifestNotFoundError struct {
	Root   string
	Cause  error
	Legacy error
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("no dataset manifest at %q: %s: %v; %s: %v", e.Root, CurrentFile, e.Cause, LegacyFile, e.Legacy)
}

func (e *ManifestNotFoundError) Unwrap() error { return e.Cause }

// Resolve reads root/datasets.json, falling back to root/versions.json on any
// failure of the first.
func Resolve(ctx context.Context, r Reader, root string) (Manifest, error) {
	m, err := readCurrent(ctx, r, join(root, CurrentFile))
	if err == nil {
		return m, nil
	}
	legacy, lerr := readLegacy(ctx, r, join(root, LegacyFile))
	if lerr == nil {
		return legacy, nil
	}
	return Manifest{}, &ManifestNotFoundError{Root: root, Cause: err, Legacy: lerr}
}

func join(root, name string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return name
	}
	return path.Join(root, name)
}

func read(ctx context.Context, r Reader, key string) ([]byte, error) {
	_, rc, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

type currentSchema struct {
	Datasets *[]string `json:"datasets"`
	Default  *string   `json:"default"`
}

func readCurrent(ctx context.Context, r Reader, key string) (Manifest, error) {
	b, err := read(ctx, r, key)
	if err != nil {
		return Manifest{}, err
	}
	var doc currentSchema
	if err := json.Unmarshal(b, &doc); err != nil {
		return Manifest{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if doc.Datasets == nil || len(*doc.Datasets) == 0 {
		return Manifest{}, fmt.Errorf("decode %s: missing datasets", key)
	}
	if doc.Default == nil {
		return Manifest{}, fmt.Errorf("decode %s: missing default", key)
	}
	m := Manifest{Datasets: *doc.Datasets, Default: *doc.Default}
	if !m.Has(m.Default) {
		return Manifest{}, fmt.Errorf("decode %s: default %q is not a listed dataset", key, m.Default)
	}
	return m, nil
}

func readLegacy(ctx context.Context, r Reader, key string) (Manifest, error) {
	b, err := read(ctx, r, key)
	if err != nil {
		return Manifest{}, err
	}
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return Manifest{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if len(names) == 0 {
		return Manifest{}, fmt.Errorf("decode %s: %w", key, errEmptyLegacy)
	}
	return Manifest{Datasets: names, Default: names[0]}, nil
}

var errEmptyLegacy = errors.New("empty version list")
