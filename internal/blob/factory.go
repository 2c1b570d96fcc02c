package blob

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	infraFS "hcsgrid/internal/infra/blob/fs"
	infraMemory "hcsgrid/internal/infra/blob/memory"
	infraS3 "hcsgrid/internal/infra/blob/s3"
)

// S3Config re-exports the infra S3 configuration type.
type S3Config = infraS3.Config

// Config selects and parameterizes a backend.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// ConfigFromEnv reads backend selection from the environment.
//
//	HCSGRID_BLOB_DRIVER: fs|s3|memory (default fs)
//	HCSGRID_BLOB_FS_ROOT: directory root when driver=fs (default .)
//	(S3 specific variables documented in internal/infra/blob/s3)
func ConfigFromEnv(getenv func(string) string) Config {
	driver := Driver(getenv("HCSGRID_BLOB_DRIVER"))
	if driver == "" {
		driver = DriverFilesystem
	}
	return Config{Driver: driver, FSRoot: getenv("HCSGRID_BLOB_FS_ROOT"), S3: infraS3.ConfigFromEnv(getenv)}
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return infraFS.New(cfg.FSRoot)
	case DriverS3:
		return infraS3.New(ctx, cfg.S3)
	case DriverMemory:
		return infraMemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}

// OpenFromEnv is Open(ctx, ConfigFromEnv(os.Getenv)).
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, ConfigFromEnv(os.Getenv))
}

// OpenRoot interprets a data-source root. "s3://bucket/prefix" opens the
// bucket with base's S3 settings and returns prefix for listing; anything
// else is a local directory that becomes the store root with an empty prefix.
func OpenRoot(ctx context.Context, root string, base Config) (Store, string, error) {
	if strings.HasPrefix(root, "s3://") {
		u, err := url.Parse(root)
		if err != nil {
			return nil, "", fmt.Errorf("parse root %s: %w", root, err)
		}
		if u.Host == "" {
			return nil, "", fmt.Errorf("parse root %s: missing bucket", root)
		}
		cfg := base.S3
		cfg.Bucket = u.Host
		st, err := infraS3.New(ctx, cfg)
		if err != nil {
			return nil, "", err
		}
		return st, strings.Trim(u.Path, "/"), nil
	}
	if strings.Contains(root, "://") {
		return nil, "", fmt.Errorf("unsupported root scheme in %s", root)
	}
	st, err := infraFS.New(root)
	if err != nil {
		return nil, "", err
	}
	return st, "", nil
}

// NewMemory returns an empty in-memory store.
func NewMemory() Store { return infraMemory.New() }

// NewMockS3ForTests exposes the in-memory S3 transport mock for cross-package tests.
func NewMockS3ForTests() Store { return infraS3.NewMockForTests(0) }
