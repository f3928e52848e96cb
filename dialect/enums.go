package dialect

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter is the field separator of a delimited file
type Delimiter uint8

const (
	DelimiterNone Delimiter = iota
	DelimiterComma
	DelimiterSemicolon
	DelimiterTab
	DelimiterSpace

	// DelimiterPipe is never inferred. It can be assigned, e.g. from a
	// file type known to be pipe-delimited.
	DelimiterPipe
)

var delimiterNames = [...]string{"NONE", "COMMA", "SEMICOLON", "TAB", "SPACE", "PIPE"}
var delimiterValues = [...]string{"", ",", ";", "\t", " ", "|"}

// Delimiters returns the inference candidates in tie-break order
func Delimiters() []Delimiter {
	return []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab, DelimiterSpace}
}

// DelimiterFor returns the delimiter whose literal is b
func DelimiterFor(b byte) (Delimiter, bool) {
	for i, v := range delimiterValues {
		if v != "" && v[0] == b {
			return Delimiter(i), true
		}
	}
	return DelimiterNone, false
}

func (d Delimiter) IsValid() bool { return int(d) < len(delimiterNames) }

func (d Delimiter) String() string {
	if !d.IsValid() {
		return "Delimiter(" + strconv.Itoa(int(d)) + ")"
	}
	return delimiterNames[d]
}

// Value returns the literal separator, "" for DelimiterNone
func (d Delimiter) Value() string {
	if !d.IsValid() {
		return ""
	}
	return delimiterValues[d]
}

// Rune returns the separator as a rune, 0 for DelimiterNone
func (d Delimiter) Rune() rune {
	if v := d.Value(); v != "" {
		return rune(v[0])
	}
	return 0
}

// ParseDelimiter accepts a variant name ("TAB") or the literal ("\t")
func ParseDelimiter(s string) (Delimiter, error) {
	for i := range delimiterNames {
		if strings.EqualFold(s, delimiterNames[i]) || (s != "" && s == delimiterValues[i]) {
			return Delimiter(i), nil
		}
	}
	return 0, fmt.Errorf("unknown delimiter %q", s)
}

// LineTerminator is the record separator of a delimited file
type LineTerminator uint8

const (
	CRLF LineTerminator = iota
	LF
	CR
)

var lineTerminatorNames = [...]string{"CRLF", "LF", "CR"}
var lineTerminatorValues = [...]string{"\r\n", "\n", "\r"}

// LineTerminators returns all terminators in tie-break order
func LineTerminators() []LineTerminator {
	return []LineTerminator{CRLF, LF, CR}
}

func (t LineTerminator) IsValid() bool { return int(t) < len(lineTerminatorNames) }

func (t LineTerminator) String() string {
	if !t.IsValid() {
		return "LineTerminator(" + strconv.Itoa(int(t)) + ")"
	}
	return lineTerminatorNames[t]
}

// Value returns the literal terminator
func (t LineTerminator) Value() string {
	if !t.IsValid() {
		return ""
	}
	return lineTerminatorValues[t]
}

// ParseLineTerminator accepts a variant name ("CRLF") or the literal
func ParseLineTerminator(s string) (LineTerminator, error) {
	for i := range lineTerminatorNames {
		if strings.EqualFold(s, lineTerminatorNames[i]) || s == lineTerminatorValues[i] {
			return LineTerminator(i), nil
		}
	}
	return 0, fmt.Errorf("unknown line terminator %q", s)
}

// Quotechar is the character that encloses fields containing delimiters
type Quotechar uint8

const (
	QuoteDouble Quotechar = iota
	QuoteSingle
	QuoteBacktick
	QuoteNone
)

var quotecharNames = [...]string{"DOUBLE_QUOTE", "SINGLE_QUOTE", "BACKTICK", "NONE"}
var quotecharValues = [...]string{`"`, `'`, "`", ""}

// Quotechars returns the quoting candidates in tie-break order
func Quotechars() []Quotechar {
	return []Quotechar{QuoteDouble, QuoteSingle, QuoteBacktick}
}

func (q Quotechar) IsValid() bool { return int(q) < len(quotecharNames) }

func (q Quotechar) String() string {
	if !q.IsValid() {
		return "Quotechar(" + strconv.Itoa(int(q)) + ")"
	}
	return quotecharNames[q]
}

// Value returns the literal quote character, "" for QuoteNone
func (q Quotechar) Value() string {
	if !q.IsValid() {
		return ""
	}
	return quotecharValues[q]
}

// Rune returns the quote character as a rune, 0 for QuoteNone
func (q Quotechar) Rune() rune {
	if v := q.Value(); v != "" {
		return rune(v[0])
	}
	return 0
}

// ParseQuotechar accepts a variant name ("SINGLE_QUOTE") or the literal
func ParseQuotechar(s string) (Quotechar, error) {
	for i := range quotecharNames {
		if strings.EqualFold(s, quotecharNames[i]) || (s != "" && s == quotecharValues[i]) {
			return Quotechar(i), nil
		}
	}
	return 0, fmt.Errorf("unknown quote character %q", s)
}

// Header tells whether the first row holds column labels
type Header bool

const (
	HeaderAbsent  Header = false
	HeaderPresent Header = true
)

func (h Header) String() string {
	if h {
		return "PRESENT"
	}
	return "ABSENT"
}

// ParseHeader accepts "present"/"absent" or anything strconv.ParseBool does
func ParseHeader(s string) (Header, error) {
	switch strings.ToLower(s) {
	case "present":
		return HeaderPresent, nil
	case "absent":
		return HeaderAbsent, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return HeaderAbsent, fmt.Errorf("unknown header value %q", s)
	}
	return Header(b), nil
}

// Characteristic names one of the five dialect properties
type Characteristic uint8

const (
	CharEncoding Characteristic = iota
	CharDelimiter
	CharLineTerminator
	CharQuotechar
	CharHeader
)

var characteristicNames = [...]string{"encoding", "delimiter", "lineterminator", "quotechar", "header"}

// Characteristics returns all characteristics in resolution order
func Characteristics() []Characteristic {
	return []Characteristic{CharEncoding, CharDelimiter, CharLineTerminator, CharQuotechar, CharHeader}
}

func (c Characteristic) IsValid() bool { return int(c) < len(characteristicNames) }

func (c Characteristic) String() string {
	if !c.IsValid() {
		return "Characteristic(" + strconv.Itoa(int(c)) + ")"
	}
	return characteristicNames[c]
}

// ParseCharacteristic resolves a characteristic by name. Case, underscores
// and hyphens are ignored, so "line_terminator" works as well.
func ParseCharacteristic(name string) (Characteristic, error) {
	n := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(name))
	for i, cn := range characteristicNames {
		if n == cn {
			return Characteristic(i), nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid file characteristic", name)
}

// MarshalText implements encoding.TextMarshaler
func (d Delimiter) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Delimiter) UnmarshalText(text []byte) error {
	v, err := ParseDelimiter(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (t LineTerminator) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (t *LineTerminator) UnmarshalText(text []byte) error {
	v, err := ParseLineTerminator(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (q Quotechar) MarshalText() ([]byte, error) { return []byte(q.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (q *Quotechar) UnmarshalText(text []byte) error {
	v, err := ParseQuotechar(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
