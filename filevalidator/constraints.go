package filevalidator

import (
	"github.com/gobeaver/filesniff/dialect"
	"github.com/gobeaver/filesniff/filetype"
)

// Size constants for easier file size configuration
const (
	KB = int64(1024)
	MB = KB * 1024
	GB = MB * 1024
)

// Constraints defines what an inspected file must look like
type Constraints struct {
	// MaxFileSize is the maximum allowed file size in bytes, 0 for no limit
	MaxFileSize int64

	// MinFileSize is the minimum allowed file size in bytes
	MinFileSize int64

	// AllowedTypes lists the accepted merged file types. Empty accepts all.
	AllowedTypes []filetype.FileType

	// AllowedExts lists accepted extensions including the dot (".csv").
	// Empty accepts all.
	AllowedExts []string

	// Dialect holds the expected characteristics. Empty fields are not
	// checked; a set Header requires the header to be present or absent.
	Dialect dialect.Description

	// MaxFieldLength is the longest allowed field in runes, 0 for no limit
	MaxFieldLength int

	// UniformRows requires every row to have the same number of fields
	UniformRows bool

	// MaxRows bounds how many rows are read for the row checks, 0 reads
	// the whole file
	MaxRows int
}

// DefaultConstraints accepts any file up to 1 GB
func DefaultConstraints() Constraints {
	return Constraints{
		MaxFileSize: 1 * GB,
	}
}

// CSVConstraints describes a well-formed CSV export: comma separated, LF
// terminated, double quoted, with a header, uniform rows and fields of at
// most 200 characters.
func CSVConstraints() Constraints {
	header := true
	c := DefaultConstraints()
	c.MinFileSize = 1
	c.AllowedTypes = []filetype.FileType{filetype.CSV}
	c.AllowedExts = []string{".csv"}
	c.Dialect = dialect.Description{
		Delimiter:      dialect.DelimiterComma.String(),
		LineTerminator: dialect.LF.String(),
		Quotechar:      dialect.QuoteDouble.String(),
		Header:         &header,
	}
	c.MaxFieldLength = 200
	c.UniformRows = true
	return c
}

// checksRows reports whether any constraint needs the file's rows
func (c Constraints) checksRows() bool {
	return c.MaxFieldLength > 0 || c.UniformRows
}
