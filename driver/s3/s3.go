// Package s3 inspects objects stored in an Amazon S3 (or S3 compatible)
// bucket. The adapter is read-only; it implements filesniff.FileReader and
// filesniff.CanReadRange so random samplers fetch chunks with ranged GETs
// instead of downloading whole objects.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gobeaver/filesniff"
)

// Client is the subset of the S3 API the adapter needs. *s3.Client
// satisfies it.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Adapter provides read access to an S3 bucket
type Adapter struct {
	client Client
	bucket string
	prefix string
}

// AdapterOption is a function that configures Adapter
type AdapterOption func(*Adapter)

// WithPrefix restricts the adapter to keys below prefix
func WithPrefix(prefix string) AdapterOption {
	return func(a *Adapter) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		a.prefix = prefix
	}
}

// New creates a new S3 adapter
func New(client Client, bucket string, options ...AdapterOption) *Adapter {
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
	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(filePath)),
	})
	if err != nil {
		return nil, mapS3Error("read", filePath, err)
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

// ReadRange implements filesniff.CanReadRange with a ranged GetObject
func (a *Adapter) ReadRange(ctx context.Context, filePath string, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 {
		return nil, &filesniff.PathError{Op: "readrange", Path: filePath, Err: filesniff.ErrInvalidOffset}
	}
	if length == 0 {
		return []byte{}, nil
	}

	resp, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(filePath)),
		Range:  aws.String(byteRange(offset, length)),
	})
	if err != nil {
		// the whole range lies past the end of the object
		if isInvalidRange(err) {
			return []byte{}, nil
		}
		return nil, mapS3Error("readrange", filePath, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, length))
	if err != nil {
		return nil, &filesniff.PathError{Op: "readrange", Path: filePath, Err: err}
	}
	return data, nil
}

// byteRange renders an inclusive HTTP Range header value
func byteRange(offset, length int64) string {
	return fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
}

// Stat implements filesniff.FileReader. Keys without an object of their own
// are reported as directories when anything is stored below them.
func (a *Adapter) Stat(ctx context.Context, filePath string) (*filesniff.FileInfo, error) {
	key := a.key(filePath)

	resp, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return &filesniff.FileInfo{
			Name:    path.Base(filePath),
			Path:    filePath,
			Size:    aws.ToInt64(resp.ContentLength),
			ModTime: aws.ToTime(resp.LastModified),
			IsDir:   strings.HasSuffix(key, "/"),
		}, nil
	}
	if !isNotFound(err) {
		return nil, mapS3Error("stat", filePath, err)
	}

	list, lerr := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(a.bucket),
		Prefix:  aws.String(dirPrefix(key)),
		MaxKeys: aws.Int32(1),
	})
	if lerr != nil {
		return nil, mapS3Error("stat", filePath, lerr)
	}
	if len(list.Contents) == 0 {
		return nil, mapS3Error("stat", filePath, err)
	}

	return &filesniff.FileInfo{
		Name:  path.Base(filePath),
		Path:  filePath,
		IsDir: true,
	}, nil
}

// ListContents implements filesniff.FileReader
func (a *Adapter) ListContents(ctx context.Context, prefix string, recursive bool) ([]filesniff.FileInfo, error) {
	listPrefix := dirPrefix(a.key(prefix))
	base := strings.Trim(prefix, "/")

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(listPrefix),
	}
	if !recursive {
		input.Delimiter = aws.String("/")
	}

	var files []filesniff.FileInfo
	paginator := s3.NewListObjectsV2Paginator(a.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error("listcontents", prefix, err)
		}

		for _, p := range page.CommonPrefixes {
			dirName := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), listPrefix), "/")
			if dirName == "" {
				continue
			}

			files = append(files, filesniff.FileInfo{
				Name:  dirName,
				Path:  path.Join(base, dirName),
				IsDir: true,
			})
		}

		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), listPrefix)
			// skip the directory marker itself
			if rel == "" {
				continue
			}

			files = append(files, filesniff.FileInfo{
				Name:    path.Base(rel),
				Path:    path.Join(base, rel),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
				IsDir:   strings.HasSuffix(rel, "/"),
			})
		}
	}

	if len(files) == 0 && base != "" {
		return nil, &filesniff.PathError{Op: "listcontents", Path: prefix, Err: filesniff.ErrNotExist}
	}

	return files, nil
}

// dirPrefix turns a key into the prefix of the keys stored below it
func dirPrefix(key string) string {
	if key == "" || key == "." {
		return ""
	}
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return key
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &notFound)
}

func isInvalidRange(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange"
}

// mapS3Error maps S3 errors to filesniff errors
func mapS3Error(op, filePath string, err error) error {
	if isNotFound(err) {
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrNotExist}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied" {
		return &filesniff.PathError{Op: op, Path: filePath, Err: filesniff.ErrPermission}
	}

	return &filesniff.PathError{Op: op, Path: filePath, Err: err}
}

// Ensure Adapter implements interfaces
var (
	_ filesniff.FileReader   = (*Adapter)(nil)
	_ filesniff.CanReadRange = (*Adapter)(nil)
)
