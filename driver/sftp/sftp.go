// Package sftp inspects files on a remote host over SFTP.
package sftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/gobeaver/filesniff"
)

// Adapter provides read access to a directory tree on an SFTP server
type Adapter struct {
	mu       sync.Mutex
	client   *sftp.Client
	sshConn  *ssh.Client
	basePath string
	dial     func() (*ssh.Client, *sftp.Client, error)
}

// AdapterOption is a function that configures SFTP Adapter
type AdapterOption func(*Adapter)

// WithBasePath roots every path below basePath
func WithBasePath(basePath string) AdapterOption {
	return func(a *Adapter) {
		if basePath != "" {
			a.basePath = path.Clean(basePath)
		}
	}
}

// New wraps an established SFTP client. Close closes it; a lost
// connection is not redialed.
func New(client *sftp.Client, options ...AdapterOption) *Adapter {
	adapter := &Adapter{client: client}
	for _, option := range options {
		option(adapter)
	}
	return adapter
}

// Dial connects to the server cfg describes. The adapter reconnects when
// the connection drops; Close releases it.
func Dial(cfg Config, options ...AdapterOption) (*Adapter, error) {
	sshConfig, err := cfg.clientConfig()
	if err != nil {
		return nil, err
	}

	adapter := &Adapter{
		dial: func() (*ssh.Client, *sftp.Client, error) {
			return connect(cfg.Address(), sshConfig)
		},
	}
	WithBasePath(cfg.BasePath)(adapter)
	for _, option := range options {
		option(adapter)
	}

	adapter.sshConn, adapter.client, err = adapter.dial()
	if err != nil {
		return nil, err
	}
	return adapter, nil
}

func connect(addr string, sshConfig *ssh.ClientConfig) (*ssh.Client, *sftp.Client, error) {
	sshConn, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to SSH: %w", err)
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return nil, nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}

	return sshConn, client, nil
}

// Close closes the SFTP and SSH connections
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
		a.client = nil
	}
	if a.sshConn != nil {
		errs = append(errs, a.sshConn.Close())
		a.sshConn = nil
	}

	return errors.Join(errs...)
}

// conn returns a live client, redialing when the adapter owns the
// connection and it was lost
func (a *Adapter) conn() (*sftp.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dial == nil {
		if a.client == nil {
			return nil, fmt.Errorf("sftp connection is closed")
		}
		return a.client, nil
	}

	if a.client != nil {
		if _, err := a.client.Getwd(); err == nil {
			return a.client, nil
		}
		// connection lost, reconnect
		a.client.Close()
		a.sshConn.Close()
		a.client, a.sshConn = nil, nil
	}

	sshConn, client, err := a.dial()
	if err != nil {
		return nil, err
	}
	a.sshConn, a.client = sshConn, client
	return client, nil
}

// fullPath returns the remote path of relativePath
func (a *Adapter) fullPath(relativePath string) string {
	cleanPath := path.Clean("/" + relativePath)
	if a.basePath == "" {
		if cleanPath == "/" {
			return "."
		}
		return strings.TrimPrefix(cleanPath, "/")
	}
	return path.Join(a.basePath, cleanPath)
}

// open runs the common preamble of every operation
func (a *Adapter) open(ctx context.Context, op, filePath string) (*sftp.Client, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", ctx.Err()
	default:
	}

	if strings.Contains(filePath, "\x00") {
		return nil, "", &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrInvalidName}
	}

	client, err := a.conn()
	if err != nil {
		return nil, "", &filesniff.PathError{Op: op, Path: filePath, Err: err}
	}
	return client, a.fullPath(filePath), nil
}

// Read implements filesniff.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	client, full, err := a.open(ctx, "read", filePath)
	if err != nil {
		return nil, err
	}

	file, err := client.Open(full)
	if err != nil {
		return nil, mapSFTPError("read", filePath, err)
	}
	return file, nil
}

// ReadAll implements filesniff.FileReader
func (a *Adapter) ReadAll(ctx context.Context, filePath string) ([]byte, error) {
	rc, err := a.Read(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadRange implements filesniff.CanReadRange
func (a *Adapter) ReadRange(ctx context.Context, filePath string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, &filesniff.PathError{Op: "readrange", Path: filePath, Err: filesniff.ErrInvalidOffset}
	}
	if length == 0 {
		return []byte{}, nil
	}

	client, full, err := a.open(ctx, "readrange", filePath)
	if err != nil {
		return nil, err
	}

	file, err := client.Open(full)
	if err != nil {
		return nil, mapSFTPError("readrange", filePath, err)
	}
	defer file.Close()

	buf := make([]byte, length)
	n, err := file.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, mapSFTPError("readrange", filePath, err)
	}
	return buf[:n], nil
}

// Stat implements filesniff.FileReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*filesniff.FileInfo, error) {
	client, full, err := a.open(ctx, "stat", filePath)
	if err != nil {
		return nil, err
	}

	info, err := client.Stat(full)
	if err != nil {
		return nil, mapSFTPError("stat", filePath, err)
	}

	return &filesniff.FileInfo{
		Name:    path.Base(filePath),
		Path:    filePath,
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]filesniff.FileInfo, error) {
	client, full, err := a.open(ctx, "listcontents", dirPath)
	if err != nil {
		return nil, err
	}

	info, err := client.Stat(full)
	if err != nil {
		return nil, mapSFTPError("listcontents", dirPath, err)
	}
	if !info.IsDir() {
		return nil, &filesniff.PathError{Op: "listcontents", Path: dirPath, Err: filesniff.ErrNotDir}
	}

	var files []filesniff.FileInfo
	if err := listDir(ctx, client, full, strings.Trim(dirPath, "/"), recursive, &files); err != nil {
		return nil, mapSFTPError("listcontents", dirPath, err)
	}
	return files, nil
}

func listDir(ctx context.Context, client *sftp.Client, fullPath, relPath string, recursive bool, results *[]filesniff.FileInfo) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	entries, err := client.ReadDir(fullPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		entryRelPath := path.Join(relPath, entry.Name())

		*results = append(*results, filesniff.FileInfo{
			Name:    entry.Name(),
			Path:    entryRelPath,
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
			IsDir:   entry.IsDir(),
		})

		if recursive && entry.IsDir() {
			if err := listDir(ctx, client, path.Join(fullPath, entry.Name()), entryRelPath, recursive, results); err != nil {
				return err
			}
		}
	}

	return nil
}

// mapSFTPError maps SFTP errors to filesniff errors
func mapSFTPError(op, filePath string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrNotExist}
	case errors.Is(err, fs.ErrPermission):
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrPermission}
	}

	return &filesniff.PathError{Op: op, Path: filePath, Err: err}
}

// Ensure Adapter implements interfaces
var (
	_ filesniff.FileReader   = (*Adapter)(nil)
	_ filesniff.CanReadRange = (*Adapter)(nil)
)
