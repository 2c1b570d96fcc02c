// Package config loads hcsgrid settings from a YAML or TOML file and the
// HCSGRID_* environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"hcsgrid/internal/blob"
	"hcsgrid/internal/catalog"
	"hcsgrid/internal/grid"
	"hcsgrid/pkg/coords"
)

// Config is the full settings tree.
type Config struct {
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	Traversal TraversalConfig `yaml:"traversal" toml:"traversal"`
	Grid      GridConfig      `yaml:"grid" toml:"grid"`
	Catalog   CatalogConfig   `yaml:"catalog" toml:"catalog"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// StorageConfig parameterizes object-store roots (s3://bucket/prefix).
type StorageConfig struct {
	Region    string `yaml:"region" toml:"region"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint"`
	PathStyle bool   `yaml:"path_style" toml:"path_style"`
}

// TraversalConfig bounds directory and bucket listings. A MaxDepth of zero
// lists only the files directly under the root.
type TraversalConfig struct {
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`
	MaxFiles int `yaml:"max_files" toml:"max_files"`
}

// GridConfig mirrors the grid assembler options.
type GridConfig struct {
	// MissingAxis is "first" or "last".
	MissingAxis   string `yaml:"missing_axis" toml:"missing_axis"`
	StackChannels bool   `yaml:"stack_channels" toml:"stack_channels"`
	Dense         bool   `yaml:"dense" toml:"dense"`
}

// CatalogConfig selects where resolution passes are recorded. An empty
// driver disables recording.
type CatalogConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	DSN    string `yaml:"dsn" toml:"dsn"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

// MetricsConfig writes pass metrics in Prometheus text format to Textfile
// when the command finishes (node_exporter textfile collector layout).
type MetricsConfig struct {
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Storage:   StorageConfig{Region: "us-east-1"},
		Traversal: TraversalConfig{MaxDepth: blob.DefaultMaxDepth, MaxFiles: blob.DefaultMaxFiles},
		Grid:      GridConfig{MissingAxis: "first"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults, choosing the decoder by extension
// (.yaml, .yml, .toml), then applies environment overrides. An empty path
// yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported extension (want .yaml, .yml or .toml)", path)
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
//
//	HCSGRID_BLOB_S3_REGION, HCSGRID_BLOB_S3_ENDPOINT, HCSGRID_BLOB_S3_PATH_STYLE
//	HCSGRID_MAX_DEPTH, HCSGRID_MAX_FILES
//	HCSGRID_MISSING_AXIS, HCSGRID_STACK_CHANNELS, HCSGRID_DENSE
//	HCSGRID_CATALOG_DRIVER, HCSGRID_CATALOG_DSN
//	HCSGRID_LOG_LEVEL, HCSGRID_METRICS_TEXTFILE
func (c *Config) ApplyEnv(getenv func(string) string) error {
	s3 := blob.ConfigFromEnv(getenv).S3
	if s3.Region != "" {
		c.Storage.Region = s3.Region
	}
	if s3.Endpoint != "" {
		c.Storage.Endpoint = s3.Endpoint
	}
	if getenv("HCSGRID_BLOB_S3_PATH_STYLE") != "" {
		c.Storage.PathStyle = s3.PathStyle
	}
	var errs []error
	setInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt("HCSGRID_MAX_DEPTH", &c.Traversal.MaxDepth)
	setInt("HCSGRID_MAX_FILES", &c.Traversal.MaxFiles)
	setString("HCSGRID_MISSING_AXIS", &c.Grid.MissingAxis)
	setBool("HCSGRID_STACK_CHANNELS", &c.Grid.StackChannels)
	setBool("HCSGRID_DENSE", &c.Grid.Dense)
	setString("HCSGRID_CATALOG_DRIVER", &c.Catalog.Driver)
	setString("HCSGRID_CATALOG_DSN", &c.Catalog.DSN)
	setString("HCSGRID_LOG_LEVEL", &c.Logging.Level)
	setString("HCSGRID_METRICS_TEXTFILE", &c.Metrics.Textfile)
	return errors.Join(errs...)
}

// Validate rejects settings no component accepts.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Grid.MissingAxis) {
	case "", "first", "last":
	default:
		return fmt.Errorf("grid.missing_axis: %q is not first or last", c.Grid.MissingAxis)
	}
	switch catalog.Driver(c.Catalog.Driver) {
	case "", catalog.DriverMemory, catalog.DriverSQLite, catalog.DriverPostgres:
	default:
		return fmt.Errorf("catalog.driver: unknown driver %q", c.Catalog.Driver)
	}
	if c.Traversal.MaxDepth < 0 || c.Traversal.MaxFiles < 0 {
		return errors.New("traversal limits must not be negative")
	}
	return nil
}

// BlobConfig returns the storage settings used to open s3:// roots.
func (c *Config) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.DriverFilesystem,
		S3:     blob.S3Config{Region: c.Storage.Region, Endpoint: c.Storage.Endpoint, PathStyle: c.Storage.PathStyle},
	}
}

func (c *Config) ListOptions() blob.ListOptions {
	return blob.ListOptions{MaxFiles: c.Traversal.MaxFiles}.WithDepth(c.Traversal.MaxDepth)
}

// GridOptions translates the grid section into assembler options.
func (c *Config) GridOptions() []grid.Option {
	var opts []grid.Option
	if strings.EqualFold(c.Grid.MissingAxis, "last") {
		opts = append(opts, grid.WithMissingAxis(grid.MissingLast))
	}
	if c.Grid.StackChannels {
		opts = append(opts, grid.WithStackedAxes(coords.AxisChannel))
	}
	if c.Grid.Dense {
		opts = append(opts, grid.WithDense())
	}
	return opts
}

func (c *Config) CatalogConfig() catalog.Config {
	return catalog.Config{Driver: catalog.Driver(c.Catalog.Driver), DSN: c.Catalog.DSN}
}
