// Package azure inspects blobs stored in an Azure Blob Storage container.
package azure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/gobeaver/filesniff"
)

// Adapter provides read access to an Azure Blob Storage container
type Adapter struct {
	client        *azblob.Client
	containerName string
	prefix        string
}

// AdapterOption is a function that configures Azure Adapter
type AdapterOption func(*Adapter)

// WithPrefix restricts the adapter to blobs below prefix
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		a.prefix = prefix
	}
}

// New creates a new Azure Blob Storage adapter
func New(client *azblob.Client, containerName string, options ...AdapterOption) *Adapter {
	adapter := &Adapter{
		client:        client,
		containerName: containerName,
	}

	for _, option := range options {
		option(adapter)
	}

	return adapter
}

func (a *Adapter) blobName(filePath string) string {
	return path.Join(a.prefix, strings.TrimPrefix(filePath, "/"))
}

func (a *Adapter) containerClient() *container.Client {
	return a.client.ServiceClient().NewContainerClient(a.containerName)
}

// Read implements filesniff.FileReader
func (a *Adapter) Read(ctx context.Context, filePath string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, a.containerName, a.blobName(filePath), nil)
	if err != nil {
		return nil, mapAzureError("read", filePath, err)
	}

	return resp.Body, nil
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

	resp, err := a.client.DownloadStream(ctx, a.containerName, a.blobName(filePath), &azblob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: offset, Count: length},
	})
	if err != nil {
		if isInvalidRange(err) {
			return []byte{}, nil
		}
		return nil, mapAzureError("readrange", filePath, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, length))
	if err != nil {
		return nil, &filesniff.PathError{Op: "readrange", Path: filePath, Err: err}
	}
	return data, nil
}

// Stat implements filesniff.FileReader
func (a *Adapter) Stat(ctx context.Context, filePath string) (*filesniff.FileInfo, error) {
	name := a.blobName(filePath)

	props, err := a.containerClient().NewBlobClient(name).GetProperties(ctx, nil)
	if err == nil {
		return &filesniff.FileInfo{
			Name:    path.Base(filePath),
			Path:    filePath,
			Size:    deref(props.ContentLength),
			ModTime: deref(props.LastModified),
			IsDir:   strings.HasSuffix(name, "/"),
		}, nil
	}
	if !isNotFound(err) {
		return nil, mapAzureError("stat", filePath, err)
	}

	// No blob of its own; a directory when anything is stored below it
	prefix := dirPrefix(name)
	pager := a.containerClient().NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
		Prefix:     &prefix,
		MaxResults: ptr(int32(1)),
	})
	resp, lerr := pager.NextPage(ctx)
	if lerr != nil {
		return nil, mapAzureError("stat", filePath, lerr)
	}
	if resp.Segment == nil || len(resp.Segment.BlobItems) == 0 {
		return nil, mapAzureError("stat", filePath, err)
	}

	return &filesniff.FileInfo{
		Name:  path.Base(filePath),
		Path:  filePath,
		IsDir: true,
	}, nil
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, dirPath string, recursive bool) ([]filesniff.FileInfo, error) {
	listPrefix := dirPrefix(a.blobName(dirPath))
	base := strings.Trim(dirPath, "/")

	var files []filesniff.FileInfo
	addBlobs := func(items []*container.BlobItem) {
		for _, item := range items {
			if item.Name == nil {
				continue
			}
			rel := strings.TrimPrefix(*item.Name, listPrefix)
			// skip the directory marker itself
			if rel == "" {
				continue
			}

			info := filesniff.FileInfo{
				Name:  path.Base(rel),
				Path:  path.Join(base, rel),
				IsDir: strings.HasSuffix(rel, "/"),
			}
			if p := item.Properties; p != nil {
				info.Size = deref(p.ContentLength)
				info.ModTime = deref(p.LastModified)
				info.IsDir = info.IsDir || deref(p.ContentType) == "application/x-directory"
			}
			files = append(files, info)
		}
	}

	if recursive {
		pager := a.containerClient().NewListBlobsFlatPager(&container.ListBlobsFlatOptions{
			Prefix: &listPrefix,
		})
		for pager.More() {
			resp, err := pager.NextPage(ctx)
			if err != nil {
				return nil, mapAzureError("listcontents", dirPath, err)
			}
			if resp.Segment != nil {
				addBlobs(resp.Segment.BlobItems)
			}
		}
	} else {
		pager := a.containerClient().NewListBlobsHierarchyPager("/", &container.ListBlobsHierarchyOptions{
			Prefix: &listPrefix,
		})
		for pager.More() {
			resp, err := pager.NextPage(ctx)
			if err != nil {
				return nil, mapAzureError("listcontents", dirPath, err)
			}
			if resp.Segment == nil {
				continue
			}

			for _, p := range resp.Segment.BlobPrefixes {
				if p.Name == nil {
					continue
				}
				dirName := strings.TrimSuffix(strings.TrimPrefix(*p.Name, listPrefix), "/")
				if dirName == "" {
					continue
				}

				files = append(files, filesniff.FileInfo{
					Name:  dirName,
					Path:  path.Join(base, dirName),
					IsDir: true,
				})
			}
			addBlobs(resp.Segment.BlobItems)
		}
	}

	if len(files) == 0 && base != "" {
		return nil, &filesniff.PathError{Op: "listcontents", Path: dirPath, Err: filesniff.ErrNotExist}
	}

	return files, nil
}

// dirPrefix turns a blob name into the prefix of the blobs stored below it
func dirPrefix(name string) string {
	if name == "" || name == "." {
		return ""
	}
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return name
}

func ptr[T any](v T) *T {
	return &v
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func isNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}

func isInvalidRange(err error) bool {
	if bloberror.HasCode(err, bloberror.InvalidRange) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusRequestedRangeNotSatisfiable
}

// mapAzureError maps Azure errors to filesniff errors
func mapAzureError(op, filePath string, err error) error {
	if isNotFound(err) {
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrNotExist}
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusForbidden {
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrPermission}
	}

	return &filesniff.PathError{Op: op, Path: filePath, Err: err}
}

// Ensure Adapter implements interfaces
var (
	_ filesniff.FileReader   = (*Adapter)(nil)
	_ filesniff.CanReadRange = (*Adapter)(nil)
)
