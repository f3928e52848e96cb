// Package gcs inspects objects stored in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/gobeaver/filesniff"
)

// Adapter provides read access to a Google Cloud Storage bucket
type Adapter struct {
	client *storage.Client
	bucket string
	prefix string
}

// AdapterOption is a function that configures GCS Adapter
type AdapterOption func(*Adapter)

// WithPrefix restricts the adapter to objects below prefix
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		a.prefix = prefix
	}
}

// New creates a new GCS adapter
func New(client *storage.Client, bucket string, options ...AdapterOption) *Adapter {
	adapter := &Adapter{
		client: client,
		bucket: bucket,
	}

	for _, option := range options {
		option(adapter)
	}

	return adapter
}

func (a *Adapter) key(filePath string) string {
	return path.Join(a.prefix, strings.TrimPrefix(filePath, "/"))
}

// Read implements filesniff.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	reader, err := a.client.Bucket(a.bucket).Object(a.key(filePath)).NewReader(ctx)
	if err != nil {
		return nil, mapGCSError("read", filePath, err)
	}

	return reader, nil
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

	reader, err := a.client.Bucket(a.bucket).Object(a.key(filePath)).NewRangeReader(ctx, offset, length)
	if err != nil {
		if isInvalidRange(err) {
			return []byte{}, nil
		}
		return nil, mapGCSError("readrange", filePath, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, length))
	if err != nil {
		return nil, &filesniff.PathError{Op: "readrange", Path: filePath, Err: err}
	}
	return data, nil
}

// Stat implements filesniff.FileReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*filesniff.FileInfo, error) {
	key := a.key(filePath)
	bkt := a.client.Bucket(a.bucket)

	attrs, err := bkt.Object(key).Attrs(ctx)
	if err == nil {
		return &filesniff.FileInfo{
			Name:    path.Base(filePath),
			Path:    filePath,
			Size:    attrs.Size,
			ModTime: attrs.Updated,
			IsDir:   isDirObject(attrs),
		}, nil
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return nil, mapGCSError("stat", filePath, err)
	}

	// No object of its own; a directory when anything is stored below it
	it := bkt.Objects(ctx, &storage.Query{Prefix: dirPrefix(key)})
	if _, ierr := it.Next(); ierr != nil {
		if errors.Is(ierr, iterator.Done) {
			return nil, mapGCSError("stat", filePath, err)
		}
		return nil, mapGCSError("stat", filePath, ierr)
	}

	return &filesniff.FileInfo{
		Name:  path.Base(filePath),
		Path:  filePath,
		IsDir: true,
	}, nil
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]filesniff.FileInfo, error) {
	listPrefix := dirPrefix(a.key(dirPath))
	base := strings.Trim(dirPath, "/")

	query := &storage.Query{Prefix: listPrefix}
	if !recursive {
		query.Delimiter = "/"
	}

	var files []filesniff.FileInfo
	it := a.client.Bucket(a.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapGCSError("listcontents", dirPath, err)
		}

		if info, ok := entryInfo(base, listPrefix, attrs); ok {
			files = append(files, info)
		}
	}

	if len(files) == 0 && base != "" {
		return nil, &filesniff.PathError{Op: "listcontents", Path: dirPath, Err: filesniff.ErrNotExist}
	}

	return files, nil
}

// entryInfo converts one listing entry, either a synthetic prefix or an
// object, into a FileInfo below base
func entryInfo(base, listPrefix string, attrs *storage.ObjectAttrs) (filesniff.FileInfo, bool) {
	if attrs.Prefix != "" {
		dirName := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, listPrefix), "/")
		if dirName == "" {
			return filesniff.FileInfo{}, false
		}
		return filesniff.FileInfo{
			Name:  dirName,
			Path:  path.Join(base, dirName),
			IsDir: true,
		}, true
	}

	rel := strings.TrimPrefix(attrs.Name, listPrefix)
	// skip the directory marker itself
	if rel == "" {
		return filesniff.FileInfo{}, false
	}

	return filesniff.FileInfo{
		Name:    path.Base(rel),
		Path:    path.Join(base, rel),
		Size:    attrs.Size,
		ModTime: attrs.Updated,
		IsDir:   isDirObject(attrs),
	}, true
}

func isDirObject(attrs *storage.ObjectAttrs) bool {
	return strings.HasSuffix(attrs.Name, "/") || attrs.ContentType == "application/x-directory"
}

// dirPrefix turns a key into the prefix of the objects stored below it
func dirPrefix(key string) string {
	if key == "" || key == "." {
		return ""
	}
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return key
}

func isInvalidRange(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusRequestedRangeNotSatisfiable
}

// mapGCSError maps GCS errors to filesniff errors
func mapGCSError(op, filePath string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrNotExist}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden {
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrPermission}
	}

	return &filesniff.PathError{Op: op, Path: filePath, Err: err}
}

// Ensure Adapter implements interfaces
var (
	_ filesniff.FileReader   = (*Adapter)(nil)
	_ filesniff.CanReadRange = (*Adapter)(nil)
)
