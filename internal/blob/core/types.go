// Package core defines the storage abstraction the resolver lists and reads
// through. Implementations live under internal/infra/blob.
package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs" // local filesystem (default, dev)
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3" // S3 / MinIO compatible
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory" // in-memory (tests)
)

const (
	// DefaultMaxDepth bounds directory descent when ListOptions carries no
	// depth bound.
	DefaultMaxDepth = 32
	// DefaultMaxFiles bounds listing size when ListOptions.MaxFiles is zero.
	DefaultMaxFiles = 1_000_000
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string // MIME type, optional
}

// ListOptions bounds a listing. Depth counts directory levels below the
// listed prefix; files directly under the prefix are at depth 0.
//
// A zero MaxDepth means unset and lists to DefaultMaxDepth. Use WithDepth to
// ask for a depth of zero.
type ListOptions struct {
	MaxDepth int
	MaxFiles int

	depthSet bool
}

// WithDepth returns o bounded to n directory levels. Zero lists only the
// files directly under the prefix; a negative n clears the bound.
func (o ListOptions) WithDepth(n int) ListOptions {
	o.MaxDepth = n
	o.depthSet = n >= 0
	return o
}

// Normalize fills unset fields with the package defaults.
func (o ListOptions) Normalize() ListOptions {
	if o.MaxDepth < 0 || (o.MaxDepth == 0 && !o.depthSet) {
		o.MaxDepth = DefaultMaxDepth
	}
	o.depthSet = true
	if o.MaxFiles <= 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	return o
}

// Admits reports whether a key relative to the listed prefix is within depth.
func (o ListOptions) Admits(rel string) bool {
	return strings.Count(rel, "/") <= o.MaxDepth
}

// Info describes a stored object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the listing/reading surface shared by all backends. Keys use "/"
// separators regardless of platform.
type Store interface {
	// Put stores a new object at key. MUST fail if the key already exists.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the object contents; a missing key wraps ErrNotFound.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// List returns objects under the directory prefix, ordered by key.
	List(ctx context.Context, prefix string, opts ListOptions) ([]Info, error)
	Driver() Driver
}

var (
	// ErrNotFound is wrapped by every backend for missing keys.
	ErrNotFound = errors.New("blob: not found")
	// ErrFileLimit is returned when a listing exceeds ListOptions.MaxFiles.
	ErrFileLimit = errors.New("blob: listing exceeds file limit")
	// ErrExists is returned by Put when the key is already taken.
	ErrExists = errors.New("blob: already exists")
)

// DirPrefix turns a directory-style prefix into the form keys are compared
// against: "" stays empty, "plate1" and "plate1/" become "plate1/".
func DirPrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
