package filesniff

import (
	"context"
	"io"
	"time"
)

// FileInfo represents file/directory metadata
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// ============================================================================
// Core Interfaces
// ============================================================================

// FileReader provides read-only access to the files being inspected.
// Classification and sampling only ever read; drivers never need write access
// to be inspected.
type FileReader interface {
	// Read returns a stream for reading file content.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// ReadAll reads entire file into memory. Use for small files only.
	ReadAll(ctx context.Context, path string) ([]byte, error)

	// Stat returns file/directory metadata.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// ListContents lists directory contents.
	// If recursive is true, includes all descendants.
	ListContents(ctx context.Context, path string, recursive bool) ([]FileInfo, error)
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Use type assertion to check if a driver supports a capability:
//
//	if ranger, ok := fs.(CanReadRange); ok {
//	    rc, err := ranger.ReadRange(ctx, path, offset, length)
//	}

// CanReadRange indicates the filesystem can read a byte range without
// streaming the whole file. Random samplers use it to fetch chunks from
// arbitrary offsets of large files.
type CanReadRange interface {
	// ReadRange returns at most length bytes starting at offset.
	// Reading past the end of the file yields a short read, not an error.
	ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error)
}
