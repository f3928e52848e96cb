// Package dialect infers how a delimited text file is written: encoding,
// delimiter, line terminator, quote character and header row. A Sniffer
// infers each characteristic lazily from a byte sample and lets callers
// assign any of them instead. Reader and Writer parse and produce records
// in a Dialect.
package dialect

import "fmt"

// Dialect is the full set of characteristics needed to parse a delimited
// text file.
type Dialect struct {
	Encoding       Encoding       `json:"encoding" yaml:"encoding"`
	Delimiter      Delimiter      `json:"delimiter" yaml:"delimiter"`
	LineTerminator LineTerminator `json:"line_terminator" yaml:"line_terminator"`
	Quotechar      Quotechar      `json:"quotechar" yaml:"quotechar"`
	Header         Header         `json:"header" yaml:"header"`
}

// CSV is a comma separated, double quoted UTF-8 dialect with LF line ends
var CSV = Dialect{
	Encoding:       UTF8,
	Delimiter:      DelimiterComma,
	LineTerminator: LF,
	Quotechar:      QuoteDouble,
	Header:         HeaderPresent,
}

// Validate checks every characteristic against its variant set
func (d Dialect) Validate() error {
	switch {
	case !d.Encoding.IsValid():
		return &TypeError{Characteristic: CharEncoding, Value: d.Encoding}
	case !d.Delimiter.IsValid():
		return &TypeError{Characteristic: CharDelimiter, Value: d.Delimiter}
	case !d.LineTerminator.IsValid():
		return &TypeError{Characteristic: CharLineTerminator, Value: d.LineTerminator}
	case !d.Quotechar.IsValid():
		return &TypeError{Characteristic: CharQuotechar, Value: d.Quotechar}
	}
	return nil
}

func (d Dialect) String() string {
	return fmt.Sprintf("encoding=%s delimiter=%s lineterminator=%s quotechar=%s header=%s",
		d.Encoding, d.Delimiter, d.LineTerminator, d.Quotechar, d.Header)
}
