// Package blob re-exports core blob abstractions and selects a backend for a
// data-source root.
package blob

import (
	"hcsgrid/internal/blob/core"
)

type (
	// Driver identifies a blob backend driver.
	Driver = core.Driver
	// PutOptions configures a blob write.
	PutOptions = core.PutOptions
	// ListOptions bounds a listing.
	ListOptions = core.ListOptions
	// Info describes stored blob metadata.
	Info = core.Info
	// Store is the interface for blob storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3-compatible driver.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test driver.
	DriverMemory = core.DriverMemory

	// DefaultMaxDepth is the listing depth used when none is configured.
	DefaultMaxDepth = core.DefaultMaxDepth
	// DefaultMaxFiles is the listing file ceiling used when none is configured.
	DefaultMaxFiles = core.DefaultMaxFiles
)

var (
	// ErrNotFound marks a missing key.
	ErrNotFound = core.ErrNotFound
	// ErrFileLimit marks a listing that exceeded its file ceiling.
	ErrFileLimit = core.ErrFileLimit
	// ErrExists marks a Put onto an existing key.
	ErrExists = core.ErrExists
)
