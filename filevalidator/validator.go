package filevalidator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/dialect"
	"github.com/gobeaver/filesniff/filetype"
	"github.com/gobeaver/filesniff/internal/logging"
)

// FileValidator validates files of a filesniff.FileReader. It holds no
// per-file state and is safe for concurrent use.
type FileValidator struct {
	constraints Constraints
	log         logrus.FieldLogger
}

// Option configures a FileValidator
type Option func(*FileValidator)

// WithLogger sets the logger used for debug output
func WithLogger(log logrus.FieldLogger) Option {
	return func(v *FileValidator) {
		if log != nil {
			v.log = log
		}
	}
}

// New creates a new file validator with the given constraints
func New(constraints Constraints, opts ...Option) *FileValidator {
	v := &FileValidator{constraints: constraints, log: logging.Discard()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewDefault creates a new file validator with DefaultConstraints
func NewDefault() *FileValidator {
	return New(DefaultConstraints())
}

// GetConstraints returns the current validation constraints
func (v *FileValidator) GetConstraints() Constraints {
	return v.constraints
}

// Validate checks path as a file of type ft. d is the file's dialect, nil
// for files that are not delimited text; dialect and row checks are then
// skipped with a warning.
//
// Constraint violations are reported in the result. The error is reserved
// for I/O failures and cancellation.
func (v *FileValidator) Validate(ctx context.Context, fs filesniff.FileReader, path string, ft filetype.FileType, d *dialect.Dialect) (*ValidationResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	info, err := fs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, &filesniff.PathError{Op: "validate", Path: path, Err: filesniff.ErrIsDir}
	}

	b := NewResultBuilder(path, info.Size).SetType(ft)
	v.checkSize(b, info.Size)
	v.checkExtension(b, path)
	v.checkType(b, ft)

	if d == nil {
		if v.constraints.checksRows() || v.constraints.Dialect != (dialect.Description{}) {
			b.AddWarning(fmt.Sprintf("%s is not delimited text, dialect and row checks skipped", ft))
		}
		return v.finish(b), nil
	}

	if err := v.checkDialect(b, *d); err != nil {
		return nil, err
	}
	if v.constraints.checksRows() {
		if err := v.checkRows(ctx, b, fs, path, *d); err != nil {
			return nil, err
		}
	}
	return v.finish(b), nil
}

func (v *FileValidator) finish(b *ResultBuilder) *ValidationResult {
	r := b.Build()
	v.log.WithFields(logrus.Fields{
		"path":   r.Path,
		"valid":  r.Valid,
		"errors": len(r.Errors),
	}).Debug("validated file")
	return r
}

func (v *FileValidator) checkSize(b *ResultBuilder, size int64) {
	c := v.constraints
	switch {
	case c.MaxFileSize > 0 && size > c.MaxFileSize:
		b.Fail(ErrorTypeSize, fmt.Sprintf("file size too big: %d bytes (max: %d bytes)", size, c.MaxFileSize))
	case c.MinFileSize > 0 && size < c.MinFileSize:
		b.Fail(ErrorTypeSize, fmt.Sprintf("file size too small: %d bytes (min: %d bytes)", size, c.MinFileSize))
	default:
		b.Pass("size", FormatSizeReadable(size))
	}
}

func (v *FileValidator) checkExtension(b *ResultBuilder, path string) {
	if len(v.constraints.AllowedExts) == 0 {
		return
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range v.constraints.AllowedExts {
		if strings.EqualFold(ext, allowed) {
			b.Pass("extension", ext)
			return
		}
	}
	b.Fail(ErrorTypeExtension, fmt.Sprintf("extension %q is not allowed; allowed: %v", ext, v.constraints.AllowedExts))
}

func (v *FileValidator) checkType(b *ResultBuilder, ft filetype.FileType) {
	if len(v.constraints.AllowedTypes) == 0 {
		return
	}
	if slices.Contains(v.constraints.AllowedTypes, ft) {
		b.Pass("filetype", ft.String())
		return
	}
	b.Fail(ErrorTypeFileType, fmt.Sprintf("file type %s is not accepted; allowed types: %v", ft, v.constraints.AllowedTypes))
}

// checkDialect compares every characteristic the constraints describe
func (v *FileValidator) checkDialect(b *ResultBuilder, d dialect.Dialect) error {
	want := v.constraints.Dialect
	if want == (dialect.Description{}) {
		return nil
	}
	expected, err := want.Dialect(d)
	if err != nil {
		return fmt.Errorf("invalid dialect constraint: %w", err)
	}

	mismatch := func(c dialect.Characteristic, got, exp fmt.Stringer) {
		b.Fail(ErrorTypeDialect, fmt.Sprintf("%s is %s, expected %s", c, got, exp))
	}
	ok := true
	if expected.Encoding != d.Encoding {
		mismatch(dialect.CharEncoding, d.Encoding, expected.Encoding)
		ok = false
	}
	if expected.Delimiter != d.Delimiter {
		mismatch(dialect.CharDelimiter, d.Delimiter, expected.Delimiter)
		ok = false
	}
	if expected.LineTerminator != d.LineTerminator {
		mismatch(dialect.CharLineTerminator, d.LineTerminator, expected.LineTerminator)
		ok = false
	}
	if expected.Quotechar != d.Quotechar {
		mismatch(dialect.CharQuotechar, d.Quotechar, expected.Quotechar)
		ok = false
	}
	if expected.Header != d.Header {
		b.Fail(ErrorTypeHeader, fmt.Sprintf("header is %s, expected %s", d.Header, expected.Header))
		ok = false
	}
	if ok {
		b.Pass("dialect", d.String())
	}
	return nil
}

// cancelCheckRows is how many rows are read between context checks
const cancelCheckRows = 1024

// checkRows reads the file with d and checks field lengths and row shape
func (v *FileValidator) checkRows(ctx context.Context, b *ResultBuilder, fs filesniff.FileReader, path string, d dialect.Dialect) error {
	rc, err := fs.Read(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()

	c := v.constraints
	r := dialect.NewDecodingReader(rc, d)

	rows := 0
	width := -1
	longest, longestRow := 0, 0
	irregular := 0
	for c.MaxRows == 0 || rows < c.MaxRows {
		if rows%cancelCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			b.Fail(ErrorTypeContent, fmt.Sprintf("row %d: %v", rows+1, err))
			break
		}
		rows++

		if width < 0 {
			width = len(record)
		} else if len(record) != width {
			irregular++
		}
		for _, field := range record {
			if n := utf8.RuneCountInString(field); n > longest {
				longest, longestRow = n, rows
			}
		}
	}
	b.SetRows(rows)

	if c.MaxFieldLength > 0 {
		if longest > c.MaxFieldLength {
			b.Fail(ErrorTypeFieldLength, fmt.Sprintf("row %d has a field of %d characters (max: %d)", longestRow, longest, c.MaxFieldLength))
		} else {
			b.Pass("field_length", fmt.Sprintf("longest field %d characters", longest))
		}
	}
	if c.UniformRows {
		if irregular > 0 {
			b.Fail(ErrorTypeRowLength, fmt.Sprintf("%d of %d rows differ from the first row's %d fields", irregular, rows, width))
		} else {
			b.Pass("row_length", fmt.Sprintf("%d fields per row", max(width, 0)))
		}
	}
	return nil
}
