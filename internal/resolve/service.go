// Package resolve runs resolution passes: it lists a data-source root,
// derives coordinates for every file and assembles them into a grid.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hcsgrid/internal/blob"
	"hcsgrid/internal/catalog"
	"hcsgrid/internal/grid"
	"hcsgrid/internal/manifest"
	"hcsgrid/internal/observability"
	"hcsgrid/internal/pathexpr"
	"hcsgrid/internal/scheme"
	"hcsgrid/pkg/coords"
)

// Pass kinds, also used as metric operation names.
const (
	KindPlate       = "plate"
	KindExpressions = "expressions"
)

// ErrRequiredExpressionEmpty is returned when a required expression matches
// no file.
var ErrRequiredExpressionEmpty = errors.New("required expression matched no files")

// OverlappingExpressionsError reports a file claimed by two expressions of
// one pass. Each file contributes at most one source.
type OverlappingExpressionsError struct {
	Path   string
	First  Expression
	Second Expression
}

func (e *OverlappingExpressionsError) Error() string {
	return fmt.Sprintf("%s matched by %q (%s) and %q (%s)", e.Path, e.First.Pattern, e.First.Role, e.Second.Pattern, e.Second.Role)
}

// Clock supplies pass timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Service resolves roots inside one blob store. It is safe for concurrent use
// when the store, recorder and catalog are.
type Service struct {
	store     blob.Store
	registry  *scheme.Registry
	log       *zap.Logger
	recorder  observability.Recorder
	catalog   catalog.Store
	clock     Clock
	newID     func() string
	list      blob.ListOptions
	gridOpts  []grid.Option
	label     string
	manifests *manifest.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry replaces the built-in scheme registry.
func WithRegistry(r *scheme.Registry) Option { return func(s *Service) { s.registry = r } }

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r observability.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithCatalog persists every successful pass to c.
func WithCatalog(c catalog.Store) Option { return func(s *Service) { s.catalog = c } }

// WithClock overrides the wall clock.
func WithClock(c Clock) Option { return func(s *Service) { s.clock = c } }

// WithIDGenerator overrides pass id generation.
func WithIDGenerator(fn func() string) Option { return func(s *Service) { s.newID = fn } }

// WithListOptions bounds traversal.
func WithListOptions(o blob.ListOptions) Option { return func(s *Service) { s.list = o } }

// WithGridOptions forwards options to the grid assembler.
func WithGridOptions(opts ...grid.Option) Option {
	return func(s *Service) { s.gridOpts = append(s.gridOpts, opts...) }
}

// WithLabel names the data source in logs and catalog snapshots, e.g.
// "s3://bucket/plate1". Without it the listing prefix is used.
func WithLabel(label string) Option { return func(s *Service) { s.label = label } }

// NewService builds a service over store.
func NewService(store blob.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: scheme.Default(),
		log:      zap.NewNop(),
		recorder: observability.Nop{},
		clock:    ClockFunc(time.Now),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.manifests = manifest.NewCache(store)
	return s
}

// Result is the outcome of one pass.
type Result struct {
	ID         string
	Root       string
	Kind       string
	ResolvedAt time.Time
	Grid       *grid.Grid
	// Unstructured lists keys no scheme recognised, in key order.
	Unstructured []string
}

// ResolvePlate classifies every file under root by the registry and
// assembles the recognised ones. Unrecognised files are reported in
// Result.Unstructured.
func (s *Service) ResolvePlate(ctx context.Context, root string) (*Result, error) {
	start := s.clock.Now()
	res, err := s.resolvePlate(ctx, root)
	return s.finish(ctx, KindPlate, root, start, res, err)
}

func (s *Service) resolvePlate(ctx context.Context, root string) (*Result, error) {
	infos, err := s.store.List(ctx, root, s.list)
	if err != nil {
		return nil, err
	}
	sources := make([]coords.Source, 0, len(infos))
	var unstructured []string
	for _, in := range infos {
		m, ok := s.registry.Classify(path.Base(in.Key))
		if !ok {
			unstructured = append(unstructured, in.Key)
			s.log.Debug("unstructured file", zap.String("key", in.Key))
			continue
		}
		rec, err := m.Record()
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", in.Key, err)
		}
		sources = append(sources, coords.Source{Path: in.Key, Coords: rec, Role: coords.RoleImage})
	}
	g, err := grid.Assemble(sources, s.gridOpts...)
	if err != nil {
		return nil, err
	}
	s.recorder.CountFiles(ctx, KindPlate, "classified", len(sources))
	s.recorder.CountFiles(ctx, KindPlate, "unstructured", len(unstructured))
	return &Result{Grid: g, Unstructured: unstructured}, nil
}

// Expression is one named-group path pattern contributing files of Role.
type Expression struct {
	Pattern  string
	Role     coords.Role
	Required bool
}

// ParseExpression reads PATTERN or PATTERN=ROLE. The role suffix is only
// taken when it names a known role, so patterns may contain '='.
func ParseExpression(raw string) (Expression, error) {
	if i := strings.LastIndex(raw, "="); i > 0 {
		if r, err := coords.ParseRole(raw[i+1:]); err == nil {
			return Expression{Pattern: raw[:i], Role: r}, nil
		}
	}
	if raw == "" {
		return Expression{}, errors.New("empty expression")
	}
	return Expression{Pattern: raw, Role: coords.RoleImage}, nil
}

// ResolveExpressions runs each expression under root and assembles the union
// of their matches. Coordinates are the verbatim named-group captures.
func (s *Service) ResolveExpressions(ctx context.Context, root string, exprs []Expression) (*Result, error) {
	start := s.clock.Now()
	res, err := s.resolveExpressions(ctx, root, exprs)
	return s.finish(ctx, KindExpressions, root, start, res, err)
}

func (s *Service) resolveExpressions(ctx context.Context, root string, exprs []Expression) (*Result, error) {
	if len(exprs) == 0 {
		return nil, errors.New("no expressions given")
	}
	var sources []coords.Source
	claimed := make(map[string]Expression)
	for _, x := range exprs {
		e, err := pathexpr.Compile(x.Pattern)
		if err != nil {
			return nil, err
		}
		hits, err := pathexpr.Resolve(ctx, s.store, root, e, s.list)
		if err != nil {
			return nil, err
		}
		if len(hits) == 0 && x.Required {
			return nil, fmt.Errorf("%w: %s", ErrRequiredExpressionEmpty, x.Pattern)
		}
		if x.Role == "" {
			x.Role = coords.RoleImage
		}
		s.log.Debug("expression resolved", zap.String("pattern", x.Pattern), zap.String("mode", e.Mode().String()), zap.Int("hits", len(hits)))
		for _, h := range hits {
			if prev, ok := claimed[h.Key]; ok {
				return nil, &OverlappingExpressionsError{Path: h.Key, First: prev, Second: x}
			}
			claimed[h.Key] = x
			sources = append(sources, coords.Source{Path: h.Key, Coords: h.Coords, Role: x.Role})
		}
	}
	g, err := grid.Assemble(sources, s.gridOpts...)
	if err != nil {
		return nil, err
	}
	s.recorder.CountFiles(ctx, KindExpressions, "matched", len(sources))
	return &Result{Grid: g}, nil
}

// Manifest returns the dataset manifest at root, parsed once per root.
func (s *Service) Manifest(ctx context.Context, root string) (manifest.Manifest, error) {
	return s.manifests.Get(ctx, root)
}

// Invalidate drops cached state for root so the next pass re-reads it.
func (s *Service) Invalidate(root string) { s.manifests.Forget(root) }

func (s *Service) finish(ctx context.Context, kind, root string, start time.Time, res *Result, err error) (*Result, error) {
	label := s.label
	if label == "" {
		label = root
	}
	elapsed := s.clock.Now().Sub(start)
	s.recorder.Observe(ctx, kind, err == nil, elapsed)
	if err != nil {
		s.log.Warn("resolution failed", zap.String("kind", kind), zap.String("root", label), zap.Error(err))
		return nil, err
	}
	res.ID = s.newID()
	res.Root = label
	res.Kind = kind
	res.ResolvedAt = start
	s.log.Info("resolution complete",
		zap.String("id", res.ID),
		zap.String("kind", kind),
		zap.String("root", label),
		zap.Int("positions", res.Grid.Len()),
		zap.Int("sources", res.Grid.SourceCount()),
		zap.Int("unstructured", len(res.Unstructured)),
		zap.Duration("elapsed", elapsed),
	)
	if s.catalog != nil {
		snap := catalog.FromGrid(res.ID, label, kind, start, res.Grid, res.Unstructured)
		if err := s.catalog.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("record pass %s: %w", res.ID, err)
		}
	}
	return res, nil
}
