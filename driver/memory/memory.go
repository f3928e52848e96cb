package memory

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/filesniff"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content []byte
	modTime time.Time
}

// memoryDir represents a directory in memory
type memoryDir struct {
	modTime time.Time
}

// Adapter provides an in-memory implementation of filesniff.FileReader.
// Useful for testing and for callers that already hold file bytes.
type Adapter struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	dirs  map[string]*memoryDir
}

// New creates a new in-memory filesystem adapter
func New() *Adapter {
	a := &Adapter{
		files: make(map[string]*memoryFile),
		dirs:  make(map[string]*memoryDir),
	}

	// Create root directory
	a.dirs[""] = &memoryDir{modTime: time.Now()}

	return a
}

// Write stores content at path, replacing any existing file
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	path = normalizePath(path)

	if !isValidPath(path) || path == "" {
		return &filesniff.PathError{Op: "write", Path: path, Err: filesniff.ErrNotAllowed}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &filesniff.PathError{Op: "write", Path: path, Err: err}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, isDir := a.dirs[path]; isDir {
		return &filesniff.PathError{Op: "write", Path: path, Err: filesniff.ErrIsDir}
	}

	a.ensureParentDirs(path)
	a.files[path] = &memoryFile{
		content: data,
		modTime: time.Now(),
	}

	return nil
}

// WriteBytes is a convenience wrapper around Write for fixtures
func (a *Adapter) WriteBytes(path string, data []byte) error {
	return a.Write(context.Background(), path, bytes.NewReader(data))
}

// Read implements filesniff.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := a.lookup(ctx, "read", path)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(file.content)), nil
}

// ReadAll implements filesniff.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadRange implements filesniff.CanReadRange
func (a *Adapter) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, &filesniff.PathError{Op: "readrange", Path: path, Err: filesniff.ErrInvalidOffset}
	}

	file, err := a.lookup(ctx, "readrange", path)
	if err != nil {
		return nil, err
	}

	size := int64(len(file.content))
	if offset >= size {
		return []byte{}, nil
	}
	end := offset + length
	if end > size {
		end = size
	}

	// Return a copy of the content to prevent modification
	out := make([]byte, end-offset)
	copy(out, file.content[offset:end])
	return out, nil
}

// Stat implements filesniff.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*filesniff.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, exists := a.files[path]; exists {
		return &filesniff.FileInfo{
			Name:    filepath.Base(path),
			Path:    path,
			Size:    int64(len(file.content)),
			ModTime: file.modTime,
		}, nil
	}

	if dir, exists := a.dirs[path]; exists {
		return &filesniff.FileInfo{
			Name:    filepath.Base(path),
			Path:    path,
			ModTime: dir.modTime,
			IsDir:   true,
		}, nil
	}

	return nil, &filesniff.PathError{Op: "stat", Path: path, Err: filesniff.ErrNotExist}
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]filesniff.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if _, exists := a.dirs[path]; !exists {
		if _, isFile := a.files[path]; isFile {
			return nil, &filesniff.PathError{Op: "listcontents", Path: path, Err: filesniff.ErrNotDir}
		}
		return nil, &filesniff.PathError{Op: "listcontents", Path: path, Err: filesniff.ErrNotExist}
	}

	var files []filesniff.FileInfo
	seen := make(map[string]bool)

	// childOf returns the listing path for p under the requested directory,
	// or "" when p is not listed.
	childOf := func(p string) string {
		rel := p
		if path != "" {
			if !strings.HasPrefix(p, path+"/") {
				return ""
			}
			rel = strings.TrimPrefix(p, path+"/")
		}
		if rel == "" {
			return ""
		}
		if recursive {
			return p
		}
		if strings.Contains(rel, "/") {
			return ""
		}
		return p
	}

	for filePath, file := range a.files {
		if p := childOf(filePath); p != "" && !seen[p] {
			seen[p] = true
			files = append(files, filesniff.FileInfo{
				Name:    filepath.Base(p),
				Path:    p,
				Size:    int64(len(file.content)),
				ModTime: file.modTime,
			})
		}
	}

	for dirPath, dir := range a.dirs {
		if dirPath == path {
			continue
		}
		if p := childOf(dirPath); p != "" && !seen[p] {
			seen[p] = true
			files = append(files, filesniff.FileInfo{
				Name:    filepath.Base(p),
				Path:    p,
				ModTime: dir.modTime,
				IsDir:   true,
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

func (a *Adapter) lookup(ctx context.Context, op, path string) (*memoryFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path = normalizePath(path)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[path]
	if !exists {
		return nil, &filesniff.PathError{Op: op, Path: path, Err: filesniff.ErrNotExist}
	}
	return file, nil
}

func (a *Adapter) ensureParentDirs(path string) {
	dir := filepath.Dir(path)
	for dir != "" && dir != "." && dir != "/" {
		if _, exists := a.dirs[dir]; !exists {
			a.dirs[dir] = &memoryDir{modTime: time.Now()}
		}
		dir = filepath.Dir(dir)
	}
}

// normalizePath normalizes a file path
func normalizePath(path string) string {
	path = strings.TrimPrefix(path, "/")
	if path == "" || path == "." {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// isValidPath checks if a path is valid (no directory traversal)
func isValidPath(path string) bool {
	return !strings.Contains(path, "..")
}

// Ensure Adapter implements interfaces
var (
	_ filesniff.FileReader   = (*Adapter)(nil)
	_ filesniff.CanReadRange = (*Adapter)(nil)
)
