package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/filesniff"
)

// Adapter provides a local filesystem implementation of filesniff.FileReader
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter rooted at root.
// Unlike a storage driver it never creates the root: inspecting a
// directory that does not exist is an error.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &filesniff.PathError{Op: "new", Path: root, Err: filesniff.ErrNotExist}
		}
		return nil, &filesniff.PathError{Op: "new", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &filesniff.PathError{Op: "new", Path: root, Err: filesniff.ErrNotDir}
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// Root returns the absolute root directory of the adapter
func (a *Adapter) Root() string {
	return a.root
}

// Write stores content at path, creating parent directories.
// It exists so tests and tools can lay down fixtures through the same
// adapter they inspect with.
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Continue
	}

	fullPath, err := a.resolve("write", path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return &filesniff.PathError{Op: "write", Path: path, Err: err}
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return &filesniff.PathError{Op: "write", Path: path, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return &filesniff.PathError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Read implements filesniff.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// Continue
	}

	fullPath, err := a.resolve("read", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, wrapOSError("read", path, err)
	}

	return f, nil
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
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// Continue
	}

	if offset < 0 || length < 0 {
		return nil, &filesniff.PathError{Op: "readrange", Path: path, Err: filesniff.ErrInvalidOffset}
	}

	fullPath, err := a.resolve("readrange", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, wrapOSError("readrange", path, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &filesniff.PathError{Op: "readrange", Path: path, Err: err}
	}

	return buf[:n], nil
}

// Stat implements filesniff.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*filesniff.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// Continue
	}

	fullPath, err := a.resolve("stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, wrapOSError("stat", path, err)
	}

	return &filesniff.FileInfo{
		Name:    filepath.Base(path),
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]filesniff.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		// Continue
	}

	fullPath, err := a.resolve("listcontents", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, wrapOSError("listcontents", path, err)
	}

	if !info.IsDir() {
		return nil, &filesniff.PathError{Op: "listcontents", Path: path, Err: filesniff.ErrNotDir}
	}

	var files []filesniff.FileInfo

	if recursive {
		err = filepath.Walk(fullPath, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Skip the root directory itself
			if walkPath == fullPath {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			relPath, err := filepath.Rel(a.root, walkPath)
			if err != nil {
				return err
			}

			files = append(files, filesniff.FileInfo{
				Name:    info.Name(),
				Path:    filepath.ToSlash(relPath),
				Size:    info.Size(),
				ModTime: info.ModTime(),
				IsDir:   info.IsDir(),
			})

			return nil
		})
		if err != nil {
			return nil, &filesniff.PathError{Op: "listcontents", Path: path, Err: err}
		}
		return files, nil
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, &filesniff.PathError{Op: "listcontents", Path: path, Err: err}
	}

	files = make([]filesniff.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, filesniff.FileInfo{
			Name:    entry.Name(),
			Path:    filepath.ToSlash(filepath.Join(path, entry.Name())),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   info.IsDir(),
		})
	}

	return files, nil
}

// resolve joins path onto the root and rejects paths escaping it
func (a *Adapter) resolve(op, path string) (string, error) {
	fullPath := filepath.Join(a.root, filepath.Clean(path))
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &filesniff.PathError{Op: op, Path: path, Err: filesniff.ErrNotAllowed}
	}
	return fullPath, nil
}

func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}

	return !filepath.IsAbs(rel) && rel != ".." && !strings.HasPrefix(rel, "../")
}

func wrapOSError(op, path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &filesniff.PathError{Op: op, Path: path, Err: filesniff.ErrNotExist}
	case os.IsPermission(err):
		return &filesniff.PathError{Op: op, Path: path, Err: filesniff.ErrPermission}
	default:
		return &filesniff.PathError{Op: op, Path: path, Err: err}
	}
}

// Ensure Adapter implements interfaces
var (
	_ filesniff.FileReader   = (*Adapter)(nil)
	_ filesniff.CanReadRange = (*Adapter)(nil)
)
