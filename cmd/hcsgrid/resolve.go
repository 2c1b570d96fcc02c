package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hcsgrid/internal/catalog"
	"hcsgrid/internal/resolve"
)

type resolveFlags struct {
	exprs    []string
	required []string
	asJSON   bool
	watch    bool
}

// expressions parses --expr and --require values. Nil means scheme mode.
func (f resolveFlags) expressions() ([]resolve.Expression, error) {
	var out []resolve.Expression
	for _, group := range []struct {
		raw      []string
		required bool
	}{{f.exprs, false}, {f.required, true}} {
		for _, raw := range group.raw {
			x, err := resolve.ParseExpression(raw)
			if err != nil {
				return nil, err
			}
			x.Required = group.required
			out = append(out, x)
		}
	}
	return out, nil
}

func newResolveCmd(a *app) *cobra.Command {
	var f resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve ROOT...",
		Short: "Resolve one or more roots into grids",
		Long: `Without --expr every file under ROOT is classified by the built-in naming
schemes. With --expr PATTERN[=ROLE] (repeatable) the named groups of each
pattern become the coordinates; --require marks a pattern that must match.
Patterns are globs unless they contain regex syntax such as (?P<name>...).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, roots []string) error {
			exprs, err := f.expressions()
			if err != nil {
				return err
			}
			if f.watch {
				return a.watchRoots(cmd.Context(), cmd.OutOrStdout(), roots, exprs, f.asJSON)
			}
			return a.resolveRoots(cmd.Context(), cmd.OutOrStdout(), roots, exprs, f.asJSON)
		},
	}
	cmd.Flags().StringArrayVar(&f.exprs, "expr", nil, "named-group pattern, optionally suffixed =image|labels|table")
	cmd.Flags().StringArrayVar(&f.required, "require", nil, "like --expr, but the pattern must match at least one file")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print one JSON document per root")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "re-resolve local roots whenever their contents change")
	return cmd
}

// resolveOnce runs a single pass over root.
func (a *app) resolveOnce(ctx context.Context, root string, exprs []resolve.Expression) (*resolve.Result, error) {
	svc, prefix, err := a.service(ctx, root)
	if err != nil {
		return nil, err
	}
	return runPass(ctx, svc, prefix, exprs)
}

func runPass(ctx context.Context, svc *resolve.Service, prefix string, exprs []resolve.Expression) (*resolve.Result, error) {
	if len(exprs) > 0 {
		return svc.ResolveExpressions(ctx, prefix, exprs)
	}
	return svc.ResolvePlate(ctx, prefix)
}

// resolveRoots resolves roots concurrently and prints results in argument
// order. The first failure cancels the remaining passes.
func (a *app) resolveRoots(ctx context.Context, w io.Writer, roots []string, exprs []resolve.Expression, asJSON bool) error {
	results := make([]*resolve.Result, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		g.Go(func() error {
			res, err := a.resolveOnce(gctx, root, exprs)
			if err != nil {
				return fmt.Errorf("%s: %w", root, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, res := range results {
		if err := printResult(w, res, asJSON); err != nil {
			return err
		}
	}
	return nil
}

// syncWriter serializes whole-result writes from concurrent watchers.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func printResult(w io.Writer, res *resolve.Result, asJSON bool) error {
	var buf bytes.Buffer
	if asJSON {
		snap := catalog.FromGrid(res.ID, res.Root, res.Kind, res.ResolvedAt, res.Grid, res.Unstructured)
		if err := json.NewEncoder(&buf).Encode(snap); err != nil {
			return err
		}
	} else {
		writeText(&buf, res)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeText(w io.Writer, res *resolve.Result) {
	g := res.Grid
	axes := make([]string, 0, len(g.Axes()))
	for _, ax := range g.Axes() {
		axes = append(axes, string(ax))
	}
	fmt.Fprintf(w, "%s  %s  pass %s\n", res.Root, res.Kind, res.ID)
	fmt.Fprintf(w, "axes: %s  positions: %d  sources: %d  unstructured: %d\n",
		strings.Join(axes, ","), g.Len(), g.SourceCount(), len(res.Unstructured))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range g.Cells() {
		if len(c.Sources) == 0 {
			fmt.Fprintf(tw, "%d\t%s\t(empty)\t\n", c.Position, c.Tuple)
			continue
		}
		for _, s := range c.Sources {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.Position, c.Tuple, s.Role, s.Path)
		}
	}
	_ = tw.Flush()
	for _, u := range res.Unstructured {
		fmt.Fprintf(w, "unstructured\t%s\n", u)
	}
}

func (a *app) logPassError(root string, err error) {
	a.log.Error("resolution failed", zap.String("root", root), zap.Error(err))
}
