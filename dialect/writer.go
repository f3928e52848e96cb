package dialect

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/transform"
)

// Writer writes delimited records in a dialect's delimiter, quote
// character, line terminator and encoding. Fields are quoted only when they
// contain the delimiter, the quote character or a line break; embedded
// quotes are doubled.
type Writer struct {
	d     Dialect
	bw    *bufio.Writer
	tw    *transform.Writer
	comma string
	quote string
	err   error
}

// NewWriter returns a Writer encoding its output in d.Encoding. Encodings
// with a byte order mark write it before the first record.
func NewWriter(w io.Writer, d Dialect) *Writer {
	wr := &Writer{d: d, comma: d.Delimiter.Value(), quote: d.Quotechar.Value()}
	if d.Encoding != ASCII {
		wr.tw = transform.NewWriter(w, d.Encoding.TextEncoding().NewEncoder())
		w = wr.tw
	}
	wr.bw = bufio.NewWriter(w)
	return wr
}

// Write writes one record. Output is buffered until Flush.
func (w *Writer) Write(record []string) error {
	if w.err != nil {
		return w.err
	}
	if w.comma == "" && len(record) > 1 {
		return ErrNoDelimiter
	}

	var line strings.Builder
	for i, field := range record {
		if i > 0 {
			line.WriteString(w.comma)
		}
		if !w.needsQuotes(field, len(record)) {
			line.WriteString(field)
			continue
		}
		if w.quote == "" {
			return ErrNeedsQuoting
		}
		line.WriteString(w.quote)
		line.WriteString(strings.ReplaceAll(field, w.quote, w.quote+w.quote))
		line.WriteString(w.quote)
	}
	line.WriteString(w.d.LineTerminator.Value())

	out := line.String()
	if w.d.Encoding == ASCII && !isASCII([]byte(out)) {
		return ErrEncode
	}
	if _, err := w.bw.WriteString(out); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteAll writes records and flushes
func (w *Writer) WriteAll(records [][]string) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered records to the underlying writer
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close flushes and finishes the encoder. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.tw != nil {
		return w.tw.Close()
	}
	return nil
}

func (w *Writer) needsQuotes(field string, fields int) bool {
	if field == "" {
		// a lone empty field would otherwise read back as a blank line
		return fields == 1
	}
	if w.comma != "" && strings.Contains(field, w.comma) {
		return true
	}
	if w.quote != "" && strings.Contains(field, w.quote) {
		return true
	}
	return strings.ContainsAny(field, "\r\n")
}
