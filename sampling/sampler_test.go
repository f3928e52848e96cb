package sampling

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/driver/memory"
)

// slottedFile builds a file whose n chunk slots are each filled with the
// byte value of the slot index, so samples reveal which slots were read.
func slottedFile(n, chunk int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		buf.Write(bytes.Repeat([]byte{byte(i)}, chunk))
	}
	return buf.Bytes()
}

// readerOnly hides the CanReadRange capability of the wrapped driver
type readerOnly struct {
	filesniff.FileReader
}

func TestSampleWholeFileWhenSmall(t *testing.T) {
	fs := memory.New()
	require.NoError(t, fs.WriteBytes("small.csv", []byte("a,b\n1,2\n")))

	s := New(fs, "small.csv", WithSeed(1))
	sample, err := s.Sample(context.Background(), DefaultBytesToAnalyze)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(sample.Bytes()))
}

func TestSampleChunks(t *testing.T) {
	const chunk = DefaultChunkSize
	data := slottedFile(40, chunk)

	tests := []struct {
		name string
		fs   filesniff.FileReader
	}{
		{name: "native range reads", fs: memory.New()},
		{name: "read-all fallback", fs: readerOnly{memory.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switch fs := tt.fs.(type) {
			case *memory.Adapter:
				require.NoError(t, fs.WriteBytes("big.bin", data))
			case readerOnly:
				require.NoError(t, fs.FileReader.(*memory.Adapter).WriteBytes("big.bin", data))
			}

			s := New(tt.fs, "big.bin", WithSeed(42))
			sample, err := s.Sample(context.Background(), DefaultBytesToAnalyze)
			require.NoError(t, err)

			got := sample.Bytes()
			require.Len(t, got, DefaultBytesToAnalyze)

			// 16184 bytes = 3 full chunks + a truncated fourth
			var slots []byte
			for off := 0; off < len(got); off += chunk {
				end := off + chunk
				if end > len(got) {
					end = len(got)
				}
				seg := got[off:end]
				assert.Equal(t, bytes.Repeat(seg[:1], len(seg)), seg, "chunk must come from one slot")
				slots = append(slots, seg[0])
			}

			require.Len(t, slots, 4)
			for i := 1; i < len(slots); i++ {
				assert.Less(t, slots[i-1], slots[i], "slots must be distinct and in file order")
			}
		})
	}
}

func TestSampleSeededIsReproducible(t *testing.T) {
	fs := memory.New()
	require.NoError(t, fs.WriteBytes("big.bin", slottedFile(64, DefaultChunkSize)))

	a, err := New(fs, "big.bin", WithSeed(7)).Sample(context.Background(), 8192)
	require.NoError(t, err)
	b, err := New(fs, "big.bin", WithSeed(7)).Sample(context.Background(), 8192)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestSampleFreshOnEachCall(t *testing.T) {
	fs := memory.New()
	require.NoError(t, fs.WriteBytes("big.bin", slottedFile(256, DefaultChunkSize)))

	s := New(fs, "big.bin", WithSeed(3))
	seen := map[uint64]bool{}
	for i := 0; i < 5; i++ {
		sample, err := s.Sample(context.Background(), 4*DefaultChunkSize)
		require.NoError(t, err)
		seen[sample.Fingerprint()] = true
	}
	assert.Greater(t, len(seen), 1, "resampling should draw independent samples")
}

func TestSampleErrors(t *testing.T) {
	fs := memory.New()
	require.NoError(t, fs.WriteBytes("dir/file.txt", []byte("x")))

	t.Run("missing file", func(t *testing.T) {
		_, err := New(fs, "missing.txt").RandomSample(100)
		assert.True(t, filesniff.IsNotExist(err))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := New(fs, "dir").RandomSample(100)
		assert.ErrorIs(t, err, filesniff.ErrIsDir)
	})

	t.Run("zero bytes requested", func(t *testing.T) {
		got, err := New(fs, "dir/file.txt").RandomSample(0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSampleImmutable(t *testing.T) {
	sample := NewSample([]byte("abc"))
	b := sample.Bytes()
	b[0] = 'z'
	assert.Equal(t, "abc", string(sample.Bytes()))
	assert.Equal(t, 3, sample.Len())
	assert.Contains(t, sample.String(), "3 bytes")
}
