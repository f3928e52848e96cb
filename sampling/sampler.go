// Package sampling draws bounded byte samples from files so that format and
// dialect inference never has to read a whole large file.
//
// A sample is assembled from fixed-size chunks taken at random,
// non-overlapping, chunk-aligned offsets and concatenated in file order.
// Files no larger than the requested size are returned whole. Sampling is
// intentionally non-deterministic across calls; inject a seeded source with
// WithSeed or WithRand when reproducible output is needed.
package sampling

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/internal/logging"
)

const (
	// DefaultBytesToAnalyze is the default sample size
	DefaultBytesToAnalyze = 16184

	// DefaultChunkSize is the size of each randomly placed chunk
	DefaultChunkSize = 4096
)

// Sampler draws random samples from one file of a filesniff.FileReader.
// A Sampler owns its random source and must not be shared between
// goroutines; create one per file and caller.
type Sampler struct {
	fs        filesniff.FileReader
	path      string
	ctx       context.Context
	chunkSize int
	rng       *rand.Rand
	log       logrus.FieldLogger
}

// Option configures a Sampler
type Option func(*Sampler)

// WithChunkSize sets the chunk size (values < 1 are ignored)
func WithChunkSize(size int) Option {
	return func(s *Sampler) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithSeed makes the chunk placement reproducible
func WithSeed(seed uint64) Option {
	return func(s *Sampler) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand injects the random source directly
func WithRand(r *rand.Rand) Option {
	return func(s *Sampler) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sampler) {
		if log != nil {
			s.log = log
		}
	}
}

// WithContext sets the context used by RandomSample, which has no context
// parameter of its own. Defaults to context.Background().
func WithContext(ctx context.Context) Option {
	return func(s *Sampler) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// New creates a Sampler for path on fs
func New(fs filesniff.FileReader, path string, opts ...Option) *Sampler {
	s := &Sampler{
		fs:        fs,
		path:      path,
		ctx:       context.Background(),
		chunkSize: DefaultChunkSize,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return s
}

// Path returns the sampled file path
func (s *Sampler) Path() string {
	return s.path
}

// RandomSample returns up to maxBytes bytes of the file. It satisfies the
// sample provider contract of the dialect sniffer.
func (s *Sampler) RandomSample(maxBytes int) ([]byte, error) {
	sample, err := s.Sample(s.ctx, maxBytes)
	if err != nil {
		return nil, err
	}
	return sample.data, nil
}

// Sample draws a new, independent sample of at most maxBytes bytes
func (s *Sampler) Sample(ctx context.Context, maxBytes int) (Sample, error) {
	if maxBytes <= 0 {
		return Sample{}, nil
	}

	info, err := s.fs.Stat(ctx, s.path)
	if err != nil {
		return Sample{}, err
	}
	if info.IsDir {
		return Sample{}, &filesniff.PathError{Op: "sample", Path: s.path, Err: filesniff.ErrIsDir}
	}

	var data []byte
	if info.Size <= int64(maxBytes) {
		data, err = s.fs.ReadAll(ctx, s.path)
		if err != nil {
			return Sample{}, err
		}
		if len(data) > maxBytes {
			// The file grew between Stat and ReadAll
			data = data[:maxBytes]
		}
	} else {
		data, err = s.readChunks(ctx, info.Size, maxBytes)
		if err != nil {
			return Sample{}, err
		}
	}

	sample := Sample{data: data}
	s.log.WithFields(logrus.Fields{
		"path":        s.path,
		"file_size":   info.Size,
		"bytes":       sample.Len(),
		"fingerprint": fmt.Sprintf("%016x", sample.Fingerprint()),
	}).Debug("drew sample")

	return sample, nil
}

// readChunks reads ceil(maxBytes/chunkSize) distinct chunk slots, truncating
// the last chunk so the result never exceeds maxBytes.
func (s *Sampler) readChunks(ctx context.Context, size int64, maxBytes int) ([]byte, error) {
	chunk := int64(s.chunkSize)
	slots := (size + chunk - 1) / chunk
	need := (int64(maxBytes) + chunk - 1) / chunk
	if need > slots {
		need = slots
	}

	picked := s.pickSlots(slots, need)

	read := s.rangeReader(ctx)
	out := make([]byte, 0, maxBytes)
	for _, slot := range picked {
		remaining := int64(maxBytes - len(out))
		if remaining <= 0 {
			break
		}
		length := chunk
		if length > remaining {
			length = remaining
		}

		part, err := read(slot*chunk, length)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}

	return out, nil
}

// pickSlots selects k distinct slots out of n (Floyd's algorithm) and
// returns them in ascending order.
func (s *Sampler) pickSlots(n, k int64) []int64 {
	selected := make(map[int64]struct{}, k)
	for j := n - k; j < n; j++ {
		t := s.rng.Int64N(j + 1)
		if _, dup := selected[t]; dup {
			selected[j] = struct{}{}
		} else {
			selected[t] = struct{}{}
		}
	}

	slots := make([]int64, 0, k)
	for slot := range selected {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}

// rangeReader prefers native range reads and otherwise loads the file once
func (s *Sampler) rangeReader(ctx context.Context) func(offset, length int64) ([]byte, error) {
	if ranger, ok := s.fs.(filesniff.CanReadRange); ok {
		return func(offset, length int64) ([]byte, error) {
			return ranger.ReadRange(ctx, s.path, offset, length)
		}
	}

	var all []byte
	var loaded bool
	return func(offset, length int64) ([]byte, error) {
		if !loaded {
			data, err := s.fs.ReadAll(ctx, s.path)
			if err != nil {
				return nil, err
			}
			all, loaded = data, true
		}
		if offset >= int64(len(all)) {
			return nil, nil
		}
		end := offset + length
		if end > int64(len(all)) {
			end = int64(len(all))
		}
		return all[offset:end], nil
	}
}
