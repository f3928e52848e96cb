package dialect

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/transform"
)

// Reader reads delimited records from UTF-8 text.
//
// Records end at "\r\n", "\n" or "\r" whatever the dialect's line
// terminator is, so files with mixed line endings read cleanly. Blank lines
// are skipped. Quoted fields may contain delimiters and line breaks; a
// doubled quote inside a quoted field stands for one quote. Without a
// delimiter each line is a single field. Without a quote character nothing
// is unquoted.
type Reader struct {
	// Strict rejects stray quotes and unterminated quoted fields with a
	// *ParseError. By default they are kept as literal text.
	Strict bool

	br    *bufio.Reader
	comma rune
	quote rune
	line  int
}

// NewReader returns a Reader over UTF-8 text using d's delimiter and quote
func NewReader(r io.Reader, d Dialect) *Reader {
	return &Reader{
		br:    bufio.NewReader(r),
		comma: d.Delimiter.Rune(),
		quote: d.Quotechar.Rune(),
	}
}

// NewDecodingReader returns a Reader over raw bytes in d's encoding
func NewDecodingReader(r io.Reader, d Dialect) *Reader {
	if d.Encoding != ASCII {
		r = transform.NewReader(r, d.Encoding.TextEncoding().NewDecoder())
	}
	return NewReader(r, d)
}

// Read returns the next record, or io.EOF when there are no more
func (r *Reader) Read() ([]string, error) {
	for {
		record, err := r.readRecord()
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}
}

// ReadAll reads every remaining record
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

type parseState uint8

const (
	stateFieldStart parseState = iota
	stateField
	stateQuoted
	stateQuoteInQuoted
)

// readRecord returns nil, nil for a blank line
func (r *Reader) readRecord() ([]string, error) {
	r.line++
	startLine := r.line

	var fields []string
	var field strings.Builder
	state := stateFieldStart
	consumed := false

	for {
		c, _, err := r.br.ReadRune()
		if err == io.EOF {
			if !consumed {
				return nil, io.EOF
			}
			if state == stateQuoted && r.Strict {
				return nil, &ParseError{Line: startLine, Err: ErrUnterminatedQuote}
			}
			return append(fields, field.String()), nil
		}
		if err != nil {
			return nil, err
		}
		consumed = true

		switch state {
		case stateFieldStart, stateField:
			switch {
			case c == '\r' || c == '\n':
				r.endLine(c)
				if state == stateFieldStart && len(fields) == 0 {
					return nil, nil
				}
				return append(fields, field.String()), nil
			case r.comma != 0 && c == r.comma:
				fields = append(fields, field.String())
				field.Reset()
				state = stateFieldStart
			case r.quote != 0 && c == r.quote && state == stateFieldStart:
				state = stateQuoted
			case r.quote != 0 && c == r.quote && r.Strict:
				return nil, &ParseError{Line: r.line, Err: ErrBareQuote}
			default:
				field.WriteRune(c)
				state = stateField
			}

		case stateQuoted:
			if c == r.quote {
				state = stateQuoteInQuoted
				continue
			}
			if c == '\n' || (c == '\r' && !r.peekLF()) {
				r.line++
			}
			field.WriteRune(c)

		case stateQuoteInQuoted:
			switch {
			case c == r.quote:
				field.WriteRune(c)
				state = stateQuoted
			case r.comma != 0 && c == r.comma:
				fields = append(fields, field.String())
				field.Reset()
				state = stateFieldStart
			case c == '\r' || c == '\n':
				r.endLine(c)
				return append(fields, field.String()), nil
			case r.Strict:
				return nil, &ParseError{Line: r.line, Err: ErrBareQuote}
			default:
				field.WriteRune(c)
				state = stateField
			}
		}
	}
}

// endLine consumes the LF of a CRLF pair
func (r *Reader) endLine(c rune) {
	if c == '\r' && r.peekLF() {
		r.br.ReadRune()
	}
}

func (r *Reader) peekLF() bool {
	next, err := r.br.Peek(1)
	return err == nil && next[0] == '\n'
}
