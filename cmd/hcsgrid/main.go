// Command hcsgrid classifies microscopy image files, resolves data-source
// roots into coordinate grids and exports the result.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hcsgrid/internal/blob"
	"hcsgrid/internal/catalog"
	"hcsgrid/internal/config"
	"hcsgrid/internal/observability"
	"hcsgrid/internal/resolve"
)

// app carries state shared by subcommands for one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	log      *zap.Logger
	metrics  *prometheus.Registry
	recorder observability.Recorder

	mu      sync.Mutex
	catalog catalog.Store
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop(), recorder: observability.Nop{}}
	root := &cobra.Command{
		Use:   "hcsgrid",
		Short: "Resolve high-content screening datasets into coordinate grids",
		Long: `hcsgrid recognises the file naming conventions of common HCS instruments
(Operetta, IncuCyte, MetaXpress) and user-supplied named-group patterns, and
assembles the matched files into an ordered multi-dimensional grid.

Roots are local directories or s3://bucket/prefix.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.init() },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newSchemesCmd(),
		newClassifyCmd(),
		newResolveCmd(a),
		newManifestCmd(a),
		newExportCmd(a),
		newLocateCmd(),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	log, err := newLogger(cfg.Logging, a.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log
	a.metrics = prometheus.NewRegistry()
	rec, err := observability.NewPrometheusRecorder(a.metrics)
	if err != nil {
		return err
	}
	a.recorder = rec
	return nil
}

func (a *app) close() error {
	var firstErr error
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			firstErr = fmt.Errorf("close catalog: %w", err)
		}
		a.catalog = nil
	}
	if a.cfg != nil && a.cfg.Metrics.Textfile != "" && a.metrics != nil {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.metrics); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("write metrics: %w", err)
		}
	}
	_ = a.log.Sync()
	return firstErr
}

// openCatalog opens the configured catalog once per invocation.
func (a *app) openCatalog() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.catalog != nil {
		return nil
	}
	st, err := catalog.Open(a.cfg.CatalogConfig())
	if err != nil {
		return err
	}
	a.catalog = st
	return nil
}

// service opens root and returns a resolution service over it together with
// the listing prefix to pass to the service.
func (a *app) service(ctx context.Context, root string) (*resolve.Service, string, error) {
	store, prefix, err := blob.OpenRoot(ctx, root, a.cfg.BlobConfig())
	if err != nil {
		return nil, "", err
	}
	if err := a.openCatalog(); err != nil {
		return nil, "", err
	}
	label := rootLabel(root)
	svc := resolve.NewService(store,
		resolve.WithLogger(a.log.With(zap.String("root", label))),
		resolve.WithRecorder(a.recorder),
		resolve.WithCatalog(a.catalog),
		resolve.WithListOptions(a.cfg.ListOptions()),
		resolve.WithGridOptions(a.cfg.GridOptions()...),
		resolve.WithLabel(label),
	)
	return svc, prefix, nil
}

// rootLabel names root in logs and the catalog: local roots by their
// absolute path, remote roots verbatim.
func rootLabel(root string) string {
	if strings.Contains(root, "://") {
		return root
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return root
}

func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
