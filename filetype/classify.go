package filetype

import (
	"bufio"
	"context"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/driver/local"
	"github.com/gobeaver/filesniff/internal/logging"
)

// Merge combines the three signals into one type. The first matching rule
// wins:
//
//  1. extension == signature, both known
//  2. extension == characteristics, both known
//  3. signature == characteristics, both known
//  4. any known signature
//  5. unknown extension with fixed-width content
//  6. any known characteristics
//  7. Text
func Merge(ext, sig, chars FileType) FileType {
	switch {
	case ext == sig && ext != Unknown:
		return ext
	case ext == chars && ext != Unknown:
		return ext
	case sig == chars && sig != Unknown:
		return sig
	case sig != Unknown:
		return sig
	case ext == Unknown && chars == FixedWidth:
		return chars
	case chars != Unknown:
		return chars
	}
	return Text
}

// Classification holds every signal that went into a merged result
type Classification struct {
	Path            string   `json:"path" yaml:"path"`
	Extension       FileType `json:"extension" yaml:"extension"`
	Signature       FileType `json:"signature" yaml:"signature"`
	Characteristics FileType `json:"characteristics" yaml:"characteristics"`
	Result          FileType `json:"result" yaml:"result"`
}

// Classifier determines file types through a filesniff.FileReader. It holds
// no per-file state and is safe for concurrent use.
type Classifier struct {
	fs       filesniff.FileReader
	sigBytes int
	maxLines int
	log      logrus.FieldLogger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithLogger sets the logger used for debug output
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Classifier) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSignatureBytes sets how many leading bytes are read for the signature
// check. Signatures are at most SignatureLength bytes long.
func WithSignatureBytes(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.sigBytes = n
		}
	}
}

// WithCharacteristicLines sets the maximum number of lines inspected
func WithCharacteristicLines(n int) Option {
	return func(c *Classifier) {
		if n >= MinCharacteristicLines {
			c.maxLines = n
		}
	}
}

// New creates a Classifier reading from fs
func New(fs filesniff.FileReader, opts ...Option) *Classifier {
	c := &Classifier{
		fs:       fs,
		sigBytes: SignatureLength,
		maxLines: CharacteristicLines,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the merged file type of path
func (c *Classifier) Classify(ctx context.Context, path string) (FileType, error) {
	cl, err := c.Explain(ctx, path)
	if err != nil {
		return Unknown, err
	}
	return cl.Result, nil
}

// Explain computes the three signals and the merged result. The file is
// read once, as a stream, and never beyond the inspected lines.
func (c *Classifier) Explain(ctx context.Context, path string) (Classification, error) {
	cl := Classification{Path: path, Extension: ByExtension(path)}

	rc, err := c.fs.Read(ctx, path)
	if err != nil {
		return Classification{}, err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	head, err := br.Peek(c.sigBytes)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return Classification{}, &filesniff.PathError{Op: "classify", Path: path, Err: err}
	}
	cl.Signature = BySignature(head)

	lines, err := ReadLines(br, c.maxLines)
	if err != nil {
		return Classification{}, &filesniff.PathError{Op: "classify", Path: path, Err: err}
	}
	cl.Characteristics = ClassifyLines(lines)
	cl.Result = Merge(cl.Extension, cl.Signature, cl.Characteristics)

	c.log.WithFields(logrus.Fields{
		"path":            path,
		"extension":       cl.Extension,
		"signature":       cl.Signature,
		"characteristics": cl.Characteristics,
		"result":          cl.Result,
	}).Debug("classified file")

	return cl, nil
}

// ClassifyFile classifies a file on the local disk
func ClassifyFile(path string, opts ...Option) (FileType, error) {
	fs, err := local.New(filepath.Dir(path))
	if err != nil {
		return Unknown, err
	}
	return New(fs, opts...).Classify(context.Background(), filepath.Base(path))
}
