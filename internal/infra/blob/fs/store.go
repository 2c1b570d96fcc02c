// Package fs implements the blob store over a local directory tree.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"hcsgrid/internal/blob/core"
)

// Store maps keys to files under root. Listing follows symlinked directories
// but visits each real directory once, so link cycles terminate.
type Store struct {
	root string
}

// New returns a filesystem-backed store rooted at root. The directory must
// already exist; resolution never creates data roots.
func New(root string) (*Store, error) {
	if root == "" {
		root = "."
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open root %s: %w", root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("open root %s: not a directory", root)
	}
	return &Store{root: root}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverFilesystem }

// Root returns the directory the store is rooted at.
func (s *Store) Root() string { return s.root }

// sanitizeKey ensures key doesn't escape root and forbids path traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	clean := path.Clean(filepath.ToSlash(key))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key traversal %q", key)
	}
	return clean, nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, _ core.PutOptions) (core.Info, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return core.Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return core.Info{}, fmt.Errorf("put %s: %w", key, core.ErrExists)
	}
	if err != nil {
		return core.Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return core.Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return core.Info{}, fmt.Errorf("put %s: %w", key, err)
	}
	return s.Head(ctx, key)
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return core.Info{}, nil, err
	}
	p, _ := s.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		return core.Info{}, nil, tagErr("get", key, err)
	}
	return info, f, nil
}

func (s *Store) Head(_ context.Context, key string) (core.Info, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return core.Info{}, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return core.Info{}, tagErr("head", key, err)
	}
	if st.IsDir() {
		return core.Info{}, fmt.Errorf("head %s: is a directory", key)
	}
	k, _ := sanitizeKey(key)
	return core.Info{Key: k, Size: st.Size(), LastModified: st.ModTime().UTC()}, nil
}

func tagErr(op, key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %s: %w: %w", op, key, core.ErrNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", op, key, err)
}

// List walks the directory named by prefix. I/O failures are returned
// immediately, tagged with the path being read.
func (s *Store) List(ctx context.Context, prefix string, opts core.ListOptions) ([]core.Info, error) {
	dir := s.root
	keyPrefix := strings.TrimSuffix(core.DirPrefix(prefix), "/")
	if keyPrefix != "" {
		p, err := s.pathFor(keyPrefix)
		if err != nil {
			return nil, err
		}
		dir = p
	}
	w := &walker{ctx: ctx, opts: opts.Normalize(), visited: make(map[string]struct{})}
	if err := w.walk(dir, keyPrefix, 0); err != nil {
		return nil, err
	}
	// ReadDir yields names in order, but a directory "a" sorts its children
	// ("a/x") before a sibling file "a.tif"; resort on full keys.
	sort.Slice(w.out, func(i, j int) bool { return w.out[i].Key < w.out[j].Key })
	return w.out, nil
}

type walker struct {
	ctx     context.Context
	opts    core.ListOptions
	visited map[string]struct{}
	out     []core.Info
}

func (w *walker) walk(dir, rel string, depth int) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	if _, seen := w.visited[real]; seen {
		return nil
	}
	w.visited[real] = struct{}{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		key := e.Name()
		if rel != "" {
			key = rel + "/" + e.Name()
		}
		st, err := os.Stat(full) // follows links
		if err != nil {
			if e.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				continue // dangling link
			}
			return fmt.Errorf("list %s: %w", full, err)
		}
		switch {
		case st.IsDir():
			if depth+1 > w.opts.MaxDepth {
				continue
			}
			if err := w.walk(full, key, depth+1); err != nil {
				return err
			}
		case st.Mode().IsRegular():
			if len(w.out) >= w.opts.MaxFiles {
				return fmt.Errorf("list %s: %w (%d)", dir, core.ErrFileLimit, w.opts.MaxFiles)
			}
			w.out = append(w.out, core.Info{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()})
		}
	}
	return nil
}
