package filevalidator

import (
	"github.com/gobeaver/filesniff/dialect"
	"github.com/gobeaver/filesniff/filetype"
)

// Builder provides a fluent API for constructing validators
type Builder struct {
	constraints Constraints
}

// NewBuilder creates a new validator builder with DefaultConstraints
func NewBuilder() *Builder {
	return &Builder{
		constraints: DefaultConstraints(),
	}
}

// Empty creates a builder without any restriction
func Empty() *Builder {
	return &Builder{}
}

// --- Size constraints ---

// MaxSize sets the maximum allowed file size
func (b *Builder) MaxSize(size int64) *Builder {
	b.constraints.MaxFileSize = size
	return b
}

// MinSize sets the minimum required file size
func (b *Builder) MinSize(size int64) *Builder {
	b.constraints.MinFileSize = size
	return b
}

// SizeRange sets both minimum and maximum file size
func (b *Builder) SizeRange(minSize, maxSize int64) *Builder {
	b.constraints.MinFileSize = minSize
	b.constraints.MaxFileSize = maxSize
	return b
}

// --- Type constraints ---

// Types adds accepted file types
func (b *Builder) Types(types ...filetype.FileType) *Builder {
	b.constraints.AllowedTypes = append(b.constraints.AllowedTypes, types...)
	return b
}

// Extensions adds allowed file extensions (e.g., ".csv", ".tsv")
func (b *Builder) Extensions(exts ...string) *Builder {
	b.constraints.AllowedExts = append(b.constraints.AllowedExts, exts...)
	return b
}

// --- Dialect constraints ---

// Dialect requires every characteristic desc describes
func (b *Builder) Dialect(desc dialect.Description) *Builder {
	b.constraints.Dialect = desc
	return b
}

// Encoding requires the encoding
func (b *Builder) Encoding(e dialect.Encoding) *Builder {
	b.constraints.Dialect.Encoding = e.String()
	return b
}

// Delimiter requires the delimiter
func (b *Builder) Delimiter(d dialect.Delimiter) *Builder {
	b.constraints.Dialect.Delimiter = d.String()
	return b
}

// LineTerminator requires the line terminator
func (b *Builder) LineTerminator(t dialect.LineTerminator) *Builder {
	b.constraints.Dialect.LineTerminator = t.String()
	return b
}

// Quotechar requires the quote character
func (b *Builder) Quotechar(q dialect.Quotechar) *Builder {
	b.constraints.Dialect.Quotechar = q.String()
	return b
}

// RequireHeader requires a header row
func (b *Builder) RequireHeader() *Builder {
	present := true
	b.constraints.Dialect.Header = &present
	return b
}

// ForbidHeader requires the first row to be data
func (b *Builder) ForbidHeader() *Builder {
	absent := false
	b.constraints.Dialect.Header = &absent
	return b
}

// --- Row constraints ---

// MaxFieldLength sets the longest allowed field in characters
func (b *Builder) MaxFieldLength(n int) *Builder {
	b.constraints.MaxFieldLength = n
	return b
}

// UniformRows requires every row to have the same number of fields
func (b *Builder) UniformRows() *Builder {
	b.constraints.UniformRows = true
	return b
}

// MaxRows bounds the rows read for row checks
func (b *Builder) MaxRows(n int) *Builder {
	b.constraints.MaxRows = n
	return b
}

// --- Build ---

// Build creates the validator with the configured constraints
func (b *Builder) Build(opts ...Option) *FileValidator {
	return New(b.constraints, opts...)
}

// Constraints returns the configured constraints without creating a validator
func (b *Builder) Constraints() Constraints {
	return b.constraints
}
