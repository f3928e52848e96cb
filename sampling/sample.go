package sampling

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Sample is an immutable byte buffer drawn from a file. It has no identity
// beyond its bytes: two samples with equal content are interchangeable.
type Sample struct {
	data []byte
}

// NewSample copies data into a Sample
func NewSample(data []byte) Sample {
	return Sample{data: append([]byte(nil), data...)}
}

// Bytes returns a copy of the sample content
func (s Sample) Bytes() []byte {
	return append([]byte(nil), s.data...)
}

// Len returns the sample size in bytes
func (s Sample) Len() int {
	return len(s.data)
}

// Fingerprint returns the xxHash64 of the sample content.
// It is meant for correlating log lines, never for equality of files.
func (s Sample) Fingerprint() uint64 {
	return xxhash.Sum64(s.data)
}

// String implements fmt.Stringer
func (s Sample) String() string {
	return fmt.Sprintf("sample(%d bytes, %016x)", len(s.data), s.Fingerprint())
}
