package gcs

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/gobeaver/filesniff"
)

func TestEntryInfo(t *testing.T) {
	updated := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		attrs *storage.ObjectAttrs
		want  filesniff.FileInfo
		ok    bool
	}{
		{
			name:  "synthetic prefix",
			attrs: &storage.ObjectAttrs{Prefix: "landing/in/2021/"},
			want:  filesniff.FileInfo{Name: "2021", Path: "in/2021", IsDir: true},
			ok:    true,
		},
		{
			name:  "object",
			attrs: &storage.ObjectAttrs{Name: "landing/in/orders.csv", Size: 17, Updated: updated},
			want:  filesniff.FileInfo{Name: "orders.csv", Path: "in/orders.csv", Size: 17, ModTime: updated},
			ok:    true,
		},
		{
			name:  "nested object in recursive listing",
			attrs: &storage.ObjectAttrs{Name: "landing/in/2021/march.csv", Size: 4},
			want:  filesniff.FileInfo{Name: "march.csv", Path: "in/2021/march.csv", Size: 4},
			ok:    true,
		},
		{
			name:  "directory marker content type",
			attrs: &storage.ObjectAttrs{Name: "landing/in/archive", ContentType: "application/x-directory"},
			want:  filesniff.FileInfo{Name: "archive", Path: "in/archive", IsDir: true},
			ok:    true,
		},
		{
			name:  "marker of the listed directory",
			attrs: &storage.ObjectAttrs{Name: "landing/in/"},
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := entryInfo("in", "landing/in/", tt.attrs)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	a := New(nil, "data", WithPrefix("landing"))
	assert.Equal(t, "landing/in/orders.csv", a.key("/in/orders.csv"))
	assert.Equal(t, "landing/in/", dirPrefix(a.key("in")))
	assert.Equal(t, "", dirPrefix(New(nil, "data").key("")))
}

func TestMapGCSError(t *testing.T) {
	err := mapGCSError("read", "a.csv", storage.ErrObjectNotExist)
	assert.True(t, filesniff.IsNotExist(err))

	err = mapGCSError("read", "a.csv", storage.ErrBucketNotExist)
	assert.True(t, filesniff.IsNotExist(err))

	err = mapGCSError("read", "a.csv", &googleapi.Error{Code: http.StatusForbidden})
	assert.True(t, filesniff.IsPermission(err))

	boom := errors.New("boom")
	err = mapGCSError("stat", "a.csv", boom)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "stat a.csv: boom", err.Error())

	assert.True(t, isInvalidRange(&googleapi.Error{Code: http.StatusRequestedRangeNotSatisfiable}))
	assert.False(t, isInvalidRange(boom))
}

func TestReadRangeArguments(t *testing.T) {
	a := New(nil, "data")
	ctx := context.Background()

	_, err := a.ReadRange(ctx, "a.csv", -1, 10)
	assert.ErrorIs(t, err, filesniff.ErrInvalidOffset)

	got, err := a.ReadRange(ctx, "a.csv", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewFromConfig(t *testing.T) {
	_, err := NewFromConfig(context.Background(), &Config{})
	assert.ErrorContains(t, err, "bucket is required")

	assert.Len(t, clientOptions(&Config{Bucket: "data"}), 0)
	assert.Len(t, clientOptions(&Config{CredentialsFile: "key.json", Endpoint: "http://localhost:4443", Anonymous: true}), 3)

	a, err := NewFromConfig(context.Background(), &Config{
		Bucket:    "data",
		Prefix:    "landing",
		Endpoint:  "http://localhost:4443/storage/v1/",
		Anonymous: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "landing/", a.prefix)
	assert.Equal(t, "data", a.bucket)
}
