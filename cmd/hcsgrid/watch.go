package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hcsgrid/internal/resolve"
)

// watchDebounce is how long a root must stay quiet before it is re-resolved.
var watchDebounce = 300 * time.Millisecond

func (a *app) watchRoots(ctx context.Context, w io.Writer, roots []string, exprs []resolve.Expression, asJSON bool) error {
	for _, root := range roots {
		if strings.Contains(root, "://") {
			return fmt.Errorf("--watch needs local roots, got %s", root)
		}
	}
	out := &syncWriter{w: w}
	g, gctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		g.Go(func() error { return a.watchRoot(gctx, out, root, exprs, asJSON) })
	}
	return g.Wait()
}

// watchRoot prints a pass for root, then rebuilds the grid wholesale after
// every settled burst of changes until ctx ends. Failed passes are logged and
// watching continues.
func (a *app) watchRoot(ctx context.Context, w io.Writer, root string, exprs []resolve.Expression, asJSON bool) error {
	svc, prefix, err := a.service(ctx, root)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := addTree(watcher, root); err != nil {
		return err
	}

	pass := func() {
		res, err := runPass(ctx, svc, prefix, exprs)
		if err != nil {
			a.logPassError(root, err)
			return
		}
		if err := printResult(w, res, asJSON); err != nil {
			a.log.Warn("write result", zap.Error(err))
		}
	}
	pass()

	settle := time.NewTimer(watchDebounce)
	settle.Stop()
	defer settle.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// New directories must be watched explicitly.
				_ = addTree(watcher, ev.Name)
			}
			a.log.Debug("change", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
			settle.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watch error", zap.String("root", root), zap.Error(err))
		case <-settle.C:
			svc.Invalidate(prefix)
			pass()
		}
	}
}

// addTree watches dir and every directory below it. A plain file is ignored.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
