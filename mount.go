package filesniff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrMountNotFound is returned when no mount point matches the path
	ErrMountNotFound = errors.New("no mount point found for path")
	// ErrMountExists is returned when trying to mount at an existing path
	ErrMountExists = errors.New("mount point already exists")
	// ErrEmptyMountPath is returned when the mount path is empty
	ErrEmptyMountPath = errors.New("mount path cannot be empty")
	// ErrNilDriver is returned when trying to mount a nil driver
	ErrNilDriver = errors.New("driver cannot be nil")
)

// MountManager joins several readers under one virtual namespace so a
// single inspection run can cover, say, a local landing directory and an
// S3 bucket:
//
//	mounts := filesniff.NewMountManager()
//	mounts.Mount("/local", localDriver)
//	mounts.Mount("/cloud", s3Driver)
//	reports, err := inspect.InspectAll(ctx, mounts, "/cloud", "**.csv")
type MountManager struct {
	mu     sync.RWMutex
	mounts map[string]FileReader
	// sorted mount paths for longest-prefix matching
	sortedPaths []string
}

// NewMountManager creates a new mount manager instance.
func NewMountManager() *MountManager {
	return &MountManager{
		mounts: make(map[string]FileReader),
	}
}

// Mount attaches fs at mountPath. Nested mounts are allowed; the longest
// matching mount path wins.
func (m *MountManager) Mount(mountPath string, fs FileReader) error {
	if fs == nil {
		return ErrNilDriver
	}

	mountPath = normalizeMountPath(mountPath)
	if mountPath == "" || mountPath == "/" {
		return ErrEmptyMountPath
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mountPath]; exists {
		return fmt.Errorf("%w: %s", ErrMountExists, mountPath)
	}

	m.mounts[mountPath] = fs
	m.updateSortedPaths()

	return nil
}

// Unmount removes the reader at the specified path.
func (m *MountManager) Unmount(mountPath string) error {
	mountPath = normalizeMountPath(mountPath)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.mounts[mountPath]; !exists {
		return fmt.Errorf("%w: %s", ErrMountNotFound, mountPath)
	}

	delete(m.mounts, mountPath)
	m.updateSortedPaths()

	return nil
}

// MountPaths returns all mount paths, longest first.
func (m *MountManager) MountPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.sortedPaths))
	copy(result, m.sortedPaths)
	return result
}

// resolve finds the mount serving absPath and the path relative to it
func (m *MountManager) resolve(absPath string) (FileReader, string, string, error) {
	absPath = normalizeMountPath(absPath)
	if absPath == "" {
		return nil, "", "", ErrEmptyMountPath
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, mountPath := range m.sortedPaths {
		if absPath == mountPath || strings.HasPrefix(absPath, mountPath+"/") {
			relativePath := strings.TrimPrefix(strings.TrimPrefix(absPath, mountPath), "/")
			return m.mounts[mountPath], mountPath, relativePath, nil
		}
	}

	return nil, "", "", fmt.Errorf("%w: %s", ErrMountNotFound, absPath)
}

// updateSortedPaths must be called with the lock held
func (m *MountManager) updateSortedPaths() {
	paths := make([]string, 0, len(m.mounts))
	for p := range m.mounts {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) > len(paths[j])
		}
		return paths[i] < paths[j]
	})
	m.sortedPaths = paths
}

// normalizeMountPath ensures the path starts with "/" and has no trailing slash.
func normalizeMountPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean("/" + p)
}

// Read routes to the mount serving filePath
func (m *MountManager) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return nil, &PathError{Op: "read", Path: filePath, Err: err}
	}
	return fs.Read(ctx, rel)
}

// ReadAll routes to the mount serving filePath
func (m *MountManager) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return nil, &PathError{Op: "read", Path: filePath, Err: err}
	}
	return fs.ReadAll(ctx, rel)
}

// ReadRange uses the mount's own range reads when it has them and
// otherwise skips to offset in a stream.
func (m *MountManager) ReadRange(ctx context.Context, filePath string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, &PathError{Op: "readrange", Path: filePath, Err: ErrInvalidOffset}
	}

	fs, _, rel, err := m.resolve(filePath)
	if err != nil {
		return nil, &PathError{Op: "readrange", Path: filePath, Err: err}
	}
	if ranger, ok := fs.(CanReadRange); ok {
		return ranger.ReadRange(ctx, rel, offset, length)
	}

	rc, err := fs.Read(ctx, rel)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if _, err := io.CopyN(io.Discard, rc, offset); err != nil {
		if errors.Is(err, io.EOF) {
			return []byte{}, nil
		}
		return nil, &PathError{Op: "readrange", Path: filePath, Err: err}
	}
	data, err := io.ReadAll(io.LimitReader(rc, length))
	if err != nil {
		return nil, &PathError{Op: "readrange", Path: filePath, Err: err}
	}
	return data, nil
}

// Stat returns the mount's FileInfo with the path made absolute. Paths
// above a mount point are reported as virtual directories.
func (m *MountManager) Stat(ctx context.Context, filePath string) (*FileInfo, error) {
	fs, mountPath, rel, err := m.resolve(filePath)
	if err != nil {
		if dirs, derr := m.listMountPointDirs(normalizeMountPath(filePath)); derr == nil && len(dirs) > 0 {
			p := normalizeMountPath(filePath)
			return &FileInfo{Name: path.Base(p), Path: p, IsDir: true}, nil
		}
		return nil, &PathError{Op: "stat", Path: filePath, Err: err}
	}

	info, err := fs.Stat(ctx, rel)
	if err != nil {
		return nil, err
	}
	info.Path = path.Join(mountPath, rel)
	if rel == "" {
		info.Name = path.Base(mountPath)
	}
	return info, nil
}

// ListContents lists the mount serving prefix, or the mount points below
// prefix when it lies above every mount.
func (m *MountManager) ListContents(ctx context.Context, prefix string, recursive bool) ([]FileInfo, error) {
	prefix = normalizeMountPath(prefix)
	if prefix == "" {
		prefix = "/"
	}

	fs, mountPath, rel, err := m.resolve(prefix)
	if err != nil {
		dirs, derr := m.listMountPointDirs(prefix)
		if derr != nil {
			return nil, &PathError{Op: "listcontents", Path: prefix, Err: derr}
		}
		if !recursive {
			return dirs, nil
		}

		files := dirs
		for _, dir := range dirs {
			below, err := m.ListContents(ctx, dir.Path, true)
			if err != nil {
				return nil, err
			}
			files = append(files, below...)
		}
		return files, nil
	}

	files, err := fs.ListContents(ctx, rel, recursive)
	if err != nil {
		return nil, err
	}

	for i := range files {
		files[i].Path = path.Join(mountPath, files[i].Path)
	}
	return files, nil
}

// listMountPointDirs returns virtual directories for the next path
// component of every mount below prefix.
func (m *MountManager) listMountPointDirs(prefix string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	base := strings.TrimSuffix(prefix, "/")
	seen := make(map[string]bool)
	var files []FileInfo
	for mountPath := range m.mounts {
		if !strings.HasPrefix(mountPath, base+"/") {
			continue
		}
		next := strings.SplitN(strings.TrimPrefix(mountPath, base+"/"), "/", 2)[0]
		if next == "" || seen[next] {
			continue
		}
		seen[next] = true
		files = append(files, FileInfo{
			Name:  next,
			Path:  base + "/" + next,
			IsDir: true,
		})
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMountNotFound, prefix)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Ensure MountManager implements interfaces
var (
	_ FileReader   = (*MountManager)(nil)
	_ CanReadRange = (*MountManager)(nil)
)
