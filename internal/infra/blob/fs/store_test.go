package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"hcsgrid/internal/blob/core"
)

func newTempStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(rel), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func keys(infos []core.Info) []string {
	out := make([]string, len(infos))
	for i, in := range infos {
		out[i] = in.Key
	}
	return out
}

func TestStore_PutGetHead(t *testing.T) {
	ctx := context.Background()
	store := newTempStore(t)
	info, err := store.Put(ctx, "alpha/test.txt", bytes.NewReader([]byte("hello")), core.PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "alpha/test.txt" || info.Size != 5 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "alpha/test.txt", bytes.NewReader([]byte("x")), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "alpha/test.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("unexpected body %q", b)
	}
	if _, err := store.Head(ctx, "missing.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Head(ctx, "alpha"); err == nil {
		t.Fatalf("expected directory error")
	}
}

func TestStore_RejectsTraversal(t *testing.T) {
	store := newTempStore(t)
	for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Head(context.Background(), key); err == nil {
			t.Fatalf("expected error for %q", key)
		}
	}
}

func TestStore_ListSortedWithPrefix(t *testing.T) {
	store := newTempStore(t)
	for _, rel := range []string{"plate/c.tif", "plate/a.tif", "plate/b.tif", "plate/a/x.tif", "other/z.tif"} {
		writeFile(t, store.Root(), rel)
	}
	list, err := store.List(context.Background(), "plate/", core.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := keys(list)
	want := []string{"plate/a.tif", "plate/a/x.tif", "plate/b.tif", "plate/c.tif"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	all, err := store.List(context.Background(), "", core.ListOptions{})
	if err != nil || len(all) != 5 {
		t.Fatalf("list all: %v %v", keys(all), err)
	}
}

func TestStore_ListDepthAndFileLimit(t *testing.T) {
	store := newTempStore(t)
	writeFile(t, store.Root(), "top.tif")
	writeFile(t, store.Root(), "d1/one.tif")
	writeFile(t, store.Root(), "d1/d2/two.tif")
	list, err := store.List(context.Background(), "", core.ListOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := keys(list); len(got) != 2 || got[0] != "d1/one.tif" || got[1] != "top.tif" {
		t.Fatalf("unexpected depth-bounded listing %v", got)
	}
	top, err := store.List(context.Background(), "", core.ListOptions{}.WithDepth(0))
	if err != nil {
		t.Fatalf("list depth 0: %v", err)
	}
	if got := keys(top); len(got) != 1 || got[0] != "top.tif" {
		t.Fatalf("unexpected root-only listing %v", got)
	}
	for i := 0; i < 5; i++ {
		writeFile(t, store.Root(), "many/f"+strconv.Itoa(i)+".tif")
	}
	if _, err := store.List(context.Background(), "many", core.ListOptions{MaxFiles: 3}); !errors.Is(err, core.ErrFileLimit) {
		t.Fatalf("expected ErrFileLimit, got %v", err)
	}
}

func TestStore_ListSymlinkCycleTerminates(t *testing.T) {
	store := newTempStore(t)
	writeFile(t, store.Root(), "a/img.tif")
	if err := os.Symlink("..", filepath.Join(store.Root(), "a", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink("nowhere", filepath.Join(store.Root(), "a", "dangling")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	list, err := store.List(context.Background(), "", core.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := keys(list); len(got) != 1 || got[0] != "a/img.tif" {
		t.Fatalf("unexpected listing %v", got)
	}
}

func TestStore_ListMissingPrefixIsTagged(t *testing.T) {
	store := newTempStore(t)
	_, err := store.List(context.Background(), "nope", core.ListOptions{})
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestNew_RequiresDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(file); err == nil {
		t.Fatalf("expected error for file root")
	}
	if _, err := New(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
