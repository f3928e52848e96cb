// Package filetype classifies files by extension, magic bytes and the
// shape of their first lines, and merges the three signals into one type.
package filetype

import (
	"fmt"
	"strings"
)

// FileType identifies the format of a file. The zero value is Unknown.
// Declaration order matters: signature matching returns the first type in
// this order whose signature prefixes the file.
type FileType uint8

const (
	Unknown FileType = iota
	PDF
	ExcelLegacy
	Excel
	CSV
	JSON
	ZIP
	GZIP
	TAR
	XML
	HTML
	Text
	JSONL
	TSV
	Pipe
	FixedWidth
	Numbers
	Pages
)

// descriptor holds the fixed data attached to each FileType
type descriptor struct {
	name        string
	extension   string
	description string
	signature   []byte // empty means no signature check
	isText      bool
	delimiter   byte // 0 means no default delimiter
}

var descriptors = [...]descriptor{
	Unknown:     {name: "UNKNOWN", description: "An unknown file type"},
	PDF:         {name: "PDF", extension: ".pdf", description: "A PDF file", signature: []byte("%PDF")},
	ExcelLegacy: {name: "EXCEL_LEGACY", extension: ".xls", description: "An Excel file", signature: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	// XLSX is a ZIP container; it shares the ZIP local-header magic, which
	// belongs to ZIP alone so signatures stay unique.
	Excel:      {name: "EXCEL", extension: ".xlsx", description: "An Excel file"},
	CSV:        {name: "CSV", extension: ".csv", description: "A CSV file", isText: true, delimiter: ','},
	JSON:       {name: "JSON", extension: ".json", description: "A JSON file", isText: true},
	ZIP:        {name: "ZIP", extension: ".zip", description: "A ZIP file", signature: []byte{'P', 'K', 0x03, 0x04}},
	GZIP:       {name: "GZIP", extension: ".gz", description: "A GZIP file", signature: []byte{0x1F, 0x8B}},
	TAR:        {name: "TAR", extension: ".tar", description: "A TAR file"},
	XML:        {name: "XML", extension: ".xml", description: "An XML file", isText: true},
	HTML:       {name: "HTML", extension: ".html", description: "An HTML file", isText: true},
	Text:       {name: "TEXT", extension: ".txt", description: "A text file", isText: true},
	JSONL:      {name: "JSONL", extension: ".jsonl", description: "A JSON Lines file", isText: true},
	TSV:        {name: "TSV", extension: ".tsv", description: "A TSV file", isText: true, delimiter: '\t'},
	Pipe:       {name: "PIPE", extension: ".pipe", description: "A pipe-delimited file", isText: true, delimiter: '|'},
	FixedWidth: {name: "FIXED_WIDTH", extension: ".fixed_width", description: "A fixed width file", isText: true},
	Numbers:    {name: "NUMBERS", extension: ".numbers", description: "Mac Numbers file"},
	Pages:      {name: "PAGES", extension: ".pages", description: "Mac Pages file"},
}

// All returns every FileType in declaration order
func All() []FileType {
	types := make([]FileType, len(descriptors))
	for i := range descriptors {
		types[i] = FileType(i)
	}
	return types
}

// IsValid reports whether t is one of the declared types
func (t FileType) IsValid() bool {
	return int(t) < len(descriptors)
}

func (t FileType) desc() descriptor {
	if !t.IsValid() {
		return descriptors[Unknown]
	}
	return descriptors[t]
}

// String returns the type name, e.g. "FIXED_WIDTH"
func (t FileType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("FileType(%d)", uint8(t))
	}
	return descriptors[t].name
}

// Extension returns the canonical extension including the dot
func (t FileType) Extension() string {
	return t.desc().extension
}

// Description returns a human-readable description
func (t FileType) Description() string {
	return t.desc().description
}

// Signature returns a copy of the magic byte prefix, or nil
func (t FileType) Signature() []byte {
	sig := t.desc().signature
	if len(sig) == 0 {
		return nil
	}
	return append([]byte(nil), sig...)
}

// IsText reports whether the type is a text format
func (t FileType) IsText() bool {
	return t.desc().isText
}

// Delimiter returns the default field delimiter of a text type
func (t FileType) Delimiter() (byte, bool) {
	d := t.desc()
	if !d.isText || d.delimiter == 0 {
		return 0, false
	}
	return d.delimiter, true
}

// FromExtension returns the first type whose extension equals suffix
// exactly (case-sensitive, dot included). Unknown if none does.
func FromExtension(suffix string) FileType {
	for i, d := range descriptors {
		if d.extension == suffix {
			return FileType(i)
		}
	}
	return Unknown
}

// Parse resolves a type by name, case-insensitively
func Parse(name string) (FileType, bool) {
	for i, d := range descriptors {
		if strings.EqualFold(d.name, name) {
			return FileType(i), true
		}
	}
	return Unknown, false
}

// MarshalText implements encoding.TextMarshaler
func (t FileType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *FileType) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("unknown file type %q", text)
	}
	*t = parsed
	return nil
}
