package local

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filesniff"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := New(t.TempDir())
	require.NoError(t, err)
	return a
}

func TestNew(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := New(t.TempDir() + "/does-not-exist")
		assert.True(t, filesniff.IsNotExist(err))
	})

	t.Run("root is a file", func(t *testing.T) {
		a := newAdapter(t)
		require.NoError(t, a.Write(context.Background(), "f.txt", strings.NewReader("x")))

		_, err := New(a.Root() + "/f.txt")
		assert.ErrorIs(t, err, filesniff.ErrNotDir)
	})
}

func TestReadRange(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	require.NoError(t, a.Write(ctx, "data.bin", strings.NewReader("0123456789")))

	tests := []struct {
		name           string
		offset, length int64
		want           string
	}{
		{name: "head", offset: 0, length: 4, want: "0123"},
		{name: "middle", offset: 3, length: 3, want: "345"},
		{name: "short read at end", offset: 8, length: 10, want: "89"},
		{name: "past end", offset: 20, length: 4, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.ReadRange(ctx, "data.bin", tt.offset, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	t.Run("negative offset", func(t *testing.T) {
		_, err := a.ReadRange(ctx, "data.bin", -1, 4)
		assert.ErrorIs(t, err, filesniff.ErrInvalidOffset)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := a.ReadRange(ctx, "nope.bin", 0, 4)
		assert.True(t, filesniff.IsNotExist(err))
	})
}

func TestPathTraversalRejected(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)

	_, err := a.Read(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, filesniff.ErrNotAllowed)

	_, err = a.Stat(ctx, "../outside")
	assert.ErrorIs(t, err, filesniff.ErrNotAllowed)
}

func TestStatAndList(t *testing.T) {
	ctx := context.Background()
	a := newAdapter(t)
	require.NoError(t, a.Write(ctx, "a.csv", strings.NewReader("a,b\n1,2\n")))
	require.NoError(t, a.Write(ctx, "nested/b.tsv", strings.NewReader("a\tb\n")))

	info, err := a.Stat(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.False(t, info.IsDir)

	flat, err := a.ListContents(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, flat, 2)

	all, err := a.ListContents(ctx, "", true)
	require.NoError(t, err)

	var paths []string
	for _, fi := range all {
		if !fi.IsDir {
			paths = append(paths, fi.Path)
		}
	}
	assert.ElementsMatch(t, []string{"a.csv", "nested/b.tsv"}, paths)

	_, err = a.ListContents(ctx, "a.csv", false)
	assert.ErrorIs(t, err, filesniff.ErrNotDir)
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAdapter(t)
	_, err := a.Read(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
