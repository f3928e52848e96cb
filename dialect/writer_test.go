package dialect

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		records [][]string
		want    string
	}{
		{
			name:    "minimal quoting",
			dialect: CSV,
			records: [][]string{{"id", "comment"}, {"1", "hello, world"}, {"2", `say "hi"`}},
			want:    "id,comment\n1,\"hello, world\"\n2,\"say \"\"hi\"\"\"\n",
		},
		{
			name:    "line break in field",
			dialect: Dialect{Encoding: UTF8, Delimiter: DelimiterComma, LineTerminator: CRLF, Quotechar: QuoteDouble},
			records: [][]string{{"a", "x\ny"}},
			want:    "a,\"x\ny\"\r\n",
		},
		{
			name:    "lone empty field",
			dialect: CSV,
			records: [][]string{{""}, {"", ""}},
			want:    "\"\"\n,\n",
		},
		{
			name:    "tab and single quote",
			dialect: Dialect{Encoding: ASCII, Delimiter: DelimiterTab, LineTerminator: LF, Quotechar: QuoteSingle},
			records: [][]string{{"a\tb", "it's", `"x"`}},
			want:    "'a\tb'\t'it''s'\t\"x\"\n",
		},
		{
			name:    "cr terminator",
			dialect: Dialect{Encoding: ASCII, Delimiter: DelimiterPipe, LineTerminator: CR, Quotechar: QuoteDouble},
			records: [][]string{{"a", "b"}, {"1", "2"}},
			want:    "a|b\r1|2\r",
		},
		{
			name:    "utf-8 bom",
			dialect: Dialect{Encoding: UTF8BOM, Delimiter: DelimiterComma, LineTerminator: LF, Quotechar: QuoteDouble},
			records: [][]string{{"a"}, {"b"}},
			want:    "\xef\xbb\xbfa\nb\n",
		},
		{
			name:    "latin-1",
			dialect: Dialect{Encoding: Latin1, Delimiter: DelimiterSemicolon, LineTerminator: LF, Quotechar: QuoteDouble},
			records: [][]string{{"café", "1"}},
			want:    "caf\xe9;1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, tt.dialect)
			for _, rec := range tt.records {
				require.NoError(t, w.Write(rec))
			}
			require.NoError(t, w.Close())
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriterErrors(t *testing.T) {
	var buf bytes.Buffer

	w := NewWriter(&buf, Dialect{Encoding: UTF8, Delimiter: DelimiterNone, Quotechar: QuoteDouble})
	assert.ErrorIs(t, w.Write([]string{"a", "b"}), ErrNoDelimiter)
	assert.NoError(t, w.Write([]string{"a,b"}))

	w = NewWriter(&buf, Dialect{Encoding: UTF8, Delimiter: DelimiterComma, Quotechar: QuoteNone})
	assert.ErrorIs(t, w.Write([]string{"a,b"}), ErrNeedsQuoting)

	w = NewWriter(&buf, Dialect{Encoding: ASCII, Delimiter: DelimiterComma, Quotechar: QuoteDouble})
	assert.ErrorIs(t, w.Write([]string{"café"}), ErrEncode)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterStickyError(t *testing.T) {
	w := NewWriter(failingWriter{}, Dialect{Encoding: ASCII, Delimiter: DelimiterComma, Quotechar: QuoteDouble})
	require.NoError(t, w.Write([]string{"a"}))
	err := w.Flush()
	require.Error(t, err)
	assert.Equal(t, err, w.Write([]string{"b"}))
}

func TestWriterReaderRoundTrip(t *testing.T) {
	records := [][]string{
		{"id", "name", "note"},
		{"1", "Zoë", "likes \"quotes\", commas"},
		{"2", "", "multi\nline"},
		{"3", "Jürgen", ""},
	}

	for _, d := range []Dialect{
		CSV,
		{Encoding: UTF16LE, Delimiter: DelimiterTab, LineTerminator: CRLF, Quotechar: QuoteSingle},
		{Encoding: UTF8BOM, Delimiter: DelimiterSemicolon, LineTerminator: CR, Quotechar: QuoteBacktick},
		{Encoding: Windows1252, Delimiter: DelimiterPipe, LineTerminator: LF, Quotechar: QuoteDouble},
	} {
		t.Run(d.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, d)
			require.NoError(t, w.WriteAll(records))
			require.NoError(t, w.Close())

			got, err := NewDecodingReader(&buf, d).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}
}
