package dialect

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	comma := Dialect{Delimiter: DelimiterComma, Quotechar: QuoteDouble}

	tests := []struct {
		name    string
		input   string
		dialect Dialect
		want    [][]string
	}{
		{
			name:    "simple",
			input:   "a,b,c\n1,2,3\n",
			dialect: comma,
			want:    [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:    "no trailing newline",
			input:   "a,b\n1,2",
			dialect: comma,
			want:    [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:    "quoted delimiter",
			input:   "id,comment\n1,\"hello, world\"\n",
			dialect: comma,
			want:    [][]string{{"id", "comment"}, {"1", "hello, world"}},
		},
		{
			name:    "doubled quote",
			input:   "\"say \"\"hi\"\"\",x\n",
			dialect: comma,
			want:    [][]string{{`say "hi"`, "x"}},
		},
		{
			name:    "multiline field",
			input:   "a,\"line one\nline two\"\nb,c\n",
			dialect: comma,
			want:    [][]string{{"a", "line one\nline two"}, {"b", "c"}},
		},
		{
			name:    "crlf",
			input:   "a,b\r\n1,2\r\n",
			dialect: comma,
			want:    [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:    "cr only",
			input:   "a,b\r1,2\r",
			dialect: comma,
			want:    [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:    "blank lines skipped",
			input:   "a,b\n\n\r\n1,2\n",
			dialect: comma,
			want:    [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:    "empty fields",
			input:   ",\na,,b\n",
			dialect: comma,
			want:    [][]string{{"", ""}, {"a", "", "b"}},
		},
		{
			name:    "quoted empty field",
			input:   "\"\"\n",
			dialect: comma,
			want:    [][]string{{""}},
		},
		{
			name:    "stray quote kept",
			input:   "ab\"c,d\n",
			dialect: comma,
			want:    [][]string{{`ab"c`, "d"}},
		},
		{
			name:    "single quote",
			input:   "1;'a;b'\n",
			dialect: Dialect{Delimiter: DelimiterSemicolon, Quotechar: QuoteSingle},
			want:    [][]string{{"1", "a;b"}},
		},
		{
			name:    "no delimiter",
			input:   "a,b c\nd\n",
			dialect: Dialect{Delimiter: DelimiterNone, Quotechar: QuoteDouble},
			want:    [][]string{{"a,b c"}, {"d"}},
		},
		{
			name:    "no quote character",
			input:   "\"a\",b\n",
			dialect: Dialect{Delimiter: DelimiterComma, Quotechar: QuoteNone},
			want:    [][]string{{`"a"`, "b"}},
		},
		{
			name:    "pipe",
			input:   "a|b\n1|2\n",
			dialect: Dialect{Delimiter: DelimiterPipe, Quotechar: QuoteDouble},
			want:    [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:    "empty input",
			input:   "",
			dialect: comma,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReader(strings.NewReader(tt.input), tt.dialect).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReaderStrict(t *testing.T) {
	d := Dialect{Delimiter: DelimiterComma, Quotechar: QuoteDouble}

	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine int
	}{
		{"bare quote", "a,b\nx\"y,z\n", ErrBareQuote, 2},
		{"text after closing quote", "\"a\"b,c\n", ErrBareQuote, 1},
		{"unterminated", "a,b\n\"open,field\nmore\n", ErrUnterminatedQuote, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input), d)
			r.Strict = true
			_, err := r.ReadAll()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantLine, perr.Line)
		})
	}
}

func TestReaderRead(t *testing.T) {
	r := NewReader(strings.NewReader("a\nb\n"), Dialect{Delimiter: DelimiterComma})

	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, rec)
	rec, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, rec)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestDecodingReader(t *testing.T) {
	d := Dialect{Encoding: UTF16LE, Delimiter: DelimiterTab, Quotechar: QuoteDouble}
	raw, err := UTF16LE.Encode("naïve\tcafé\n1\t2\n")
	require.NoError(t, err)

	got, err := NewDecodingReader(bytes.NewReader(raw), d).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"naïve", "café"}, {"1", "2"}}, got)

	d = Dialect{Encoding: UTF8BOM, Delimiter: DelimiterComma, Quotechar: QuoteDouble}
	got, err = NewDecodingReader(strings.NewReader("\xef\xbb\xbfid,name\n"), d).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}}, got)

	d = Dialect{Encoding: Latin1, Delimiter: DelimiterSemicolon, Quotechar: QuoteDouble}
	got, err = NewDecodingReader(bytes.NewReader([]byte{'c', 'a', 'f', 0xE9, ';', '1', '\n'}), d).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"café", "1"}}, got)
}
