// Package zip exposes the members of a ZIP archive as a read-only
// filesniff.FileReader, so delimited files shipped inside an archive can be
// inspected without unpacking it.
package zip

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/gobeaver/filesniff"
)

// Adapter provides read access to the members of a ZIP archive
type Adapter struct {
	mu     sync.RWMutex
	closer io.Closer
	files  map[string]*zipEntry
}

// zipEntry is a member of the archive or a directory implied by one
type zipEntry struct {
	file  *zip.File
	isDir bool
}

// Open opens a ZIP file on the local disk
func Open(zipPath string) (*Adapter, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	a := newAdapter(&reader.Reader)
	a.closer = reader
	return a, nil
}

// NewFromReader reads the archive from r, which holds size bytes
func NewFromReader(r io.ReaderAt, size int64) (*Adapter, error) {
	reader, err := zip.NewReader(r, size)
	// members with insecure names are skipped when indexing
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	return newAdapter(reader), nil
}

// OpenFrom loads the archive stored at archivePath on fs, e.g. a ZIP in an
// S3 bucket. The whole archive is held in memory.
func OpenFrom(ctx context.Context, fs filesniff.FileReader, archivePath string) (*Adapter, error) {
	data, err := fs.ReadAll(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	a, err := NewFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &filesniff.PathError{Op: "open", Path: archivePath, Err: err}
	}
	return a, nil
}

func newAdapter(reader *zip.Reader) *Adapter {
	a := &Adapter{files: make(map[string]*zipEntry)}

	for _, f := range reader.File {
		name := normalizePath(f.Name)
		if name == "" || !isValidPath(name) {
			continue
		}

		a.files[name] = &zipEntry{
			file:  f,
			isDir: f.FileInfo().IsDir(),
		}

		// Also add parent directories
		a.ensureParentDirs(name)
	}

	return a
}

// Close releases the archive file opened by Open
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func (a *Adapter) lookup(ctx context.Context, op, filePath string) (string, *zipEntry, error) {
	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	default:
	}

	name := normalizePath(filePath)
	if name == "" {
		return name, &zipEntry{isDir: true}, nil
	}

	entry, exists := a.files[name]
	if !exists {
		return "", nil, &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrNotExist}
	}
	return name, entry, nil
}

// Read implements filesniff.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, entry, err := a.lookup(ctx, "read", filePath)
	if err != nil {
		return nil, err
	}
	if entry.isDir {
		return nil, &filesniff.PathError{Op: "read", Path: filePath, Err: filesniff.ErrIsDir}
	}

	rc, err := entry.file.Open()
	if errors.Is(err, zip.ErrAlgorithm) {
		return nil, &filesniff.PathError{Op: "read", Path: filePath, Err: fmt.Errorf("%w: compression method %d", filesniff.ErrNotSupported, entry.file.Method)}
	}
	if err != nil {
		return nil, &filesniff.PathError{Op: "read", Path: filePath, Err: err}
	}
	return rc, nil
}

// ReadAll implements filesniff.FileReader
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	rc, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &filesniff.PathError{Op: "read", Path: filePath, Err: err}
	}
	return data, nil
}

// Stat implements filesniff.FileReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*filesniff.FileInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	name, entry, err := a.lookup(ctx, "stat", filePath)
	if err != nil {
		return nil, err
	}

	info := entryInfo(name, entry)
	return &info, nil
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, prefix string, recursive bool) ([]filesniff.FileInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	dir, entry, err := a.lookup(ctx, "listcontents", prefix)
	if err != nil {
		return nil, err
	}
	if !entry.isDir {
		return nil, &filesniff.PathError{Op: "listcontents", Path: prefix, Err: filesniff.ErrNotDir}
	}

	var files []filesniff.FileInfo
	for name, entry := range a.files {
		rel := name
		if dir != "" {
			if !strings.HasPrefix(name, dir+"/") {
				continue
			}
			rel = strings.TrimPrefix(name, dir+"/")
		}

		// Non-recursive: only immediate children
		if !recursive && strings.Contains(rel, "/") {
			continue
		}
		files = append(files, entryInfo(name, entry))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

func entryInfo(name string, entry *zipEntry) filesniff.FileInfo {
	info := filesniff.FileInfo{
		Name:  path.Base(name),
		Path:  name,
		IsDir: entry.isDir,
	}
	if name == "" {
		info.Name = "."
	}
	if entry.file != nil {
		info.ModTime = entry.file.Modified
		if !entry.isDir {
			info.Size = int64(entry.file.UncompressedSize64)
		}
	}
	return info
}

// ensureParentDirs creates parent directory entries
func (a *Adapter) ensureParentDirs(filePath string) {
	dir := path.Dir(filePath)
	for dir != "" && dir != "." && dir != "/" {
		if _, exists := a.files[dir]; !exists {
			a.files[dir] = &zipEntry{isDir: true}
		}
		dir = path.Dir(dir)
	}
}

// normalizePath normalizes a file path
func normalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return path.Clean(p)
}

// isValidPath rejects members that would climb out of the archive root
func isValidPath(p string) bool {
	return p != ".." && !strings.HasPrefix(p, "../")
}

// Ensure Adapter implements interfaces
var _ filesniff.FileReader = (*Adapter)(nil)
