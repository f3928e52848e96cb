package zip

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/dialect"
	"github.com/gobeaver/filesniff/driver/memory"
	"github.com/gobeaver/filesniff/filetype"
	"github.com/gobeaver/filesniff/inspect"
)

const orders = "id;customer;ordered\n1;alice;2021-03-04\n2;bob;2021-05-06\n3;carol;2021-07-08\n"

// buildZip writes files in order; names ending in "/" become directory entries
func buildZip(t *testing.T, files [][2]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		fw, err := w.Create(f[0])
		require.NoError(t, err, "create %s in test zip", f[0])
		_, err = fw.Write([]byte(f[1]))
		require.NoError(t, err, "write %s in test zip", f[0])
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testArchive(t *testing.T) *Adapter {
	t.Helper()
	data := buildZip(t, [][2]string{
		{"export/", ""},
		{"export/orders.csv", orders},
		{"export/2021/march.csv", "a,b\n"},
		{"readme.txt", "hello\n"},
		{"../escape.csv", "x\n"},
	})
	a, err := NewFromReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return a
}

func TestReadAll(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	data, err := a.ReadAll(ctx, "/export/orders.csv")
	require.NoError(t, err)
	assert.Equal(t, orders, string(data))

	_, err = a.ReadAll(ctx, "missing.csv")
	assert.True(t, filesniff.IsNotExist(err))

	_, err = a.ReadAll(ctx, "export")
	assert.ErrorIs(t, err, filesniff.ErrIsDir)

	_, err = a.ReadAll(ctx, "../escape.csv")
	assert.True(t, filesniff.IsNotExist(err), "escaping member must be skipped")
}

func TestStat(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	tests := []struct {
		path  string
		size  int64
		isDir bool
	}{
		{"export/orders.csv", int64(len(orders)), false},
		{"export", 0, true},
		{"export/2021", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		info, err := a.Stat(ctx, tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.size, info.Size, tt.path)
		assert.Equal(t, tt.isDir, info.IsDir, tt.path)
	}
}

func TestListContents(t *testing.T) {
	a := testArchive(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		prefix    string
		recursive bool
		want      []string
	}{
		{"root", "", false, []string{"export", "readme.txt"}},
		{"root recursive", "", true, []string{"export", "export/2021", "export/2021/march.csv", "export/orders.csv", "readme.txt"}},
		{"subdir", "export", false, []string{"export/2021", "export/orders.csv"}},
		{"subdir with slashes", "/export/", true, []string{"export/2021", "export/2021/march.csv", "export/orders.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := a.ListContents(ctx, tt.prefix, tt.recursive)
			require.NoError(t, err)

			var got []string
			for _, f := range files {
				got = append(got, f.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := a.ListContents(ctx, "readme.txt", false)
	assert.ErrorIs(t, err, filesniff.ErrNotDir)

	_, err = a.ListContents(ctx, "missing", false)
	assert.True(t, filesniff.IsNotExist(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = a.ListContents(cancelled, "", true)
	assert.Equal(t, context.Canceled, err)
}

func TestOpen(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "export.zip")
	require.NoError(t, os.WriteFile(zipPath, buildZip(t, [][2]string{{"orders.csv", orders}}), 0o644))

	a, err := Open(zipPath)
	require.NoError(t, err)

	_, err = a.Stat(context.Background(), "orders.csv")
	assert.NoError(t, err)
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close(), "second Close")

	_, err = Open(filepath.Join(t.TempDir(), "missing.zip"))
	assert.Error(t, err)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestReadUnsupportedMethod(t *testing.T) {
	const method = 99

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	w.RegisterCompressor(method, func(out io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{out}, nil
	})
	fw, err := w.CreateHeader(&zip.FileHeader{Name: "packed.csv", Method: method})
	require.NoError(t, err)
	_, err = fw.Write([]byte(orders))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	a, err := NewFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	_, err = a.Stat(context.Background(), "packed.csv")
	assert.NoError(t, err)

	_, err = a.ReadAll(context.Background(), "packed.csv")
	assert.ErrorIs(t, err, filesniff.ErrNotSupported)
	var pathErr *filesniff.PathError
	require.ErrorAs(t, err, &pathErr)
	assert.Equal(t, "read", pathErr.Op)
}

func TestInspectArchiveMembers(t *testing.T) {
	ctx := context.Background()

	fs := memory.New()
	require.NoError(t, fs.WriteBytes("landing/export.zip", buildZip(t, [][2]string{{"export/orders.csv", orders}})))
	require.NoError(t, fs.WriteBytes("landing/broken.zip", []byte("PK\x03\x04 truncated")))

	outer, err := inspect.Inspect(ctx, fs, "landing/export.zip")
	require.NoError(t, err)
	require.Equal(t, filetype.ZIP, outer.Type())

	archive, err := OpenFrom(ctx, fs, "landing/export.zip")
	require.NoError(t, err)

	reports, err := inspect.InspectAll(ctx, archive, "", "export/*.csv")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, "export/orders.csv", r.Path)
	assert.Equal(t, filetype.CSV, r.Type())
	require.NotNil(t, r.Dialect)
	assert.Equal(t, dialect.DelimiterSemicolon, r.Dialect.Delimiter)

	_, err = OpenFrom(ctx, fs, "landing/broken.zip")
	assert.Error(t, err, "truncated archive")

	_, err = OpenFrom(ctx, fs, "landing/missing.zip")
	assert.True(t, filesniff.IsNotExist(err))
}
