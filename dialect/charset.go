package dialect

import (
	"bytes"
	"unicode/utf8"

	"github.com/saintfish/chardet"
)

// CharsetDetector guesses the encoding name of raw bytes. It returns false
// when it has no guess.
type CharsetDetector interface {
	Detect(sample []byte) (string, bool)
}

// CharsetDetectorFunc adapts a function to CharsetDetector
type CharsetDetectorFunc func(sample []byte) (string, bool)

func (f CharsetDetectorFunc) Detect(sample []byte) (string, bool) { return f(sample) }

// ChardetDetector is the default CharsetDetector. Byte order marks, pure
// ASCII and well-formed multi-byte UTF-8 are recognized directly, as is
// BOM-less UTF-16 and UTF-32 of mostly Latin text. Anything else goes to the
// ICU-derived statistical detector.
type ChardetDetector struct {
	detector *chardet.Detector
}

// NewChardetDetector creates the default detector
func NewChardetDetector() *ChardetDetector {
	return &ChardetDetector{detector: chardet.NewTextDetector()}
}

var boms = []struct {
	bom  []byte
	name string
}{
	// UTF-32 LE must be tested before UTF-16 LE, they share a prefix
	{bomUTF32LE, "utf-32"},
	{bomUTF32BE, "utf-32"},
	{[]byte{0xEF, 0xBB, 0xBF}, "utf-8-sig"},
	{bomUTF16LE, "utf-16"},
	{bomUTF16BE, "utf-16"},
}

// Detect implements CharsetDetector
func (d *ChardetDetector) Detect(sample []byte) (string, bool) {
	if len(sample) == 0 {
		return "", false
	}

	for _, b := range boms {
		if bytes.HasPrefix(sample, b.bom) {
			return b.name, true
		}
	}

	if bytes.IndexByte(sample, 0) < 0 {
		if isASCII(sample) {
			return "ascii", true
		}
		if utf8.Valid(sample) {
			return "utf-8", true
		}
	} else if name, ok := detectWideByNULs(sample); ok {
		return name, true
	}

	result, err := d.detector.DetectBest(sample)
	if err != nil || result == nil || result.Charset == "" {
		return "", false
	}
	return result.Charset, true
}

// detectWideByNULs recognizes BOM-less UTF-16 and UTF-32 from where the NUL
// bytes fall. Latin text leaves the high bytes of every code unit zero, so
// NULs gather at fixed positions modulo the unit size. The sample must start
// on a code unit boundary.
func detectWideByNULs(sample []byte) (string, bool) {
	if n := len(sample) - len(sample)%4; n >= 4 {
		var nuls [4]int
		for i, c := range sample[:n] {
			if c == 0 {
				nuls[i%4]++
			}
		}
		units := float64(n / 4)
		share := func(i int) float64 { return float64(nuls[i]) / units }
		switch {
		case share(2) >= 0.9 && share(3) >= 0.9 && share(0) <= 0.1:
			return "utf-32-le", true
		case share(0) >= 0.9 && share(1) >= 0.9 && share(3) <= 0.1:
			return "utf-32-be", true
		}
	}

	n := len(sample) - len(sample)%2
	if n < 2 {
		return "", false
	}
	var even, odd int
	for i, c := range sample[:n] {
		if c != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	units := float64(n / 2)
	switch {
	case float64(odd)/units >= 0.5 && float64(even)/units <= 0.1:
		return "utf-16-le", true
	case float64(even)/units >= 0.5 && float64(odd)/units <= 0.1:
		return "utf-16-be", true
	}
	return "", false
}
