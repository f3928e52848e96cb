package dialect

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Description is a portable, possibly partial, dialect. Empty fields are
// left to inference when the description is applied to a Sniffer.
//
// Values are variant names ("COMMA", "CRLF", "UTF_8_BOM") or, for the
// delimiter, terminator and quote character, the literal characters.
// Encodings also accept decoder names such as "utf-8-sig".
type Description struct {
	Encoding       string `yaml:"encoding,omitempty"`
	Delimiter      string `yaml:"delimiter,omitempty"`
	LineTerminator string `yaml:"line_terminator,omitempty"`
	Quotechar      string `yaml:"quotechar,omitempty"`
	Header         *bool  `yaml:"header,omitempty"`
}

// Describe returns the complete description of d
func Describe(d Dialect) Description {
	header := bool(d.Header)
	return Description{
		Encoding:       d.Encoding.String(),
		Delimiter:      d.Delimiter.String(),
		LineTerminator: d.LineTerminator.String(),
		Quotechar:      d.Quotechar.String(),
		Header:         &header,
	}
}

// values parses the described characteristics, keyed by characteristic
func (desc Description) values() (map[Characteristic]any, error) {
	out := map[Characteristic]any{}
	if desc.Encoding != "" {
		e, ok := LookupEncoding(desc.Encoding)
		if !ok {
			return nil, &TypeError{Characteristic: CharEncoding, Value: desc.Encoding}
		}
		out[CharEncoding] = e
	}
	if desc.Delimiter != "" {
		d, err := ParseDelimiter(desc.Delimiter)
		if err != nil {
			return nil, &TypeError{Characteristic: CharDelimiter, Value: desc.Delimiter}
		}
		out[CharDelimiter] = d
	}
	if desc.LineTerminator != "" {
		t, err := ParseLineTerminator(desc.LineTerminator)
		if err != nil {
			return nil, &TypeError{Characteristic: CharLineTerminator, Value: desc.LineTerminator}
		}
		out[CharLineTerminator] = t
	}
	if desc.Quotechar != "" {
		q, err := ParseQuotechar(desc.Quotechar)
		if err != nil {
			return nil, &TypeError{Characteristic: CharQuotechar, Value: desc.Quotechar}
		}
		out[CharQuotechar] = q
	}
	if desc.Header != nil {
		out[CharHeader] = Header(*desc.Header)
	}
	return out, nil
}

// Dialect fills the characteristics desc leaves empty from base
func (desc Description) Dialect(base Dialect) (Dialect, error) {
	values, err := desc.values()
	if err != nil {
		return Dialect{}, err
	}
	d := base
	for c, v := range values {
		switch c {
		case CharEncoding:
			d.Encoding = v.(Encoding)
		case CharDelimiter:
			d.Delimiter = v.(Delimiter)
		case CharLineTerminator:
			d.LineTerminator = v.(LineTerminator)
		case CharQuotechar:
			d.Quotechar = v.(Quotechar)
		case CharHeader:
			d.Header = v.(Header)
		}
	}
	return d, nil
}

// ReadDescription decodes a YAML description
func ReadDescription(r io.Reader) (Description, error) {
	var desc Description
	if err := yaml.NewDecoder(r).Decode(&desc); err != nil && err != io.EOF {
		return Description{}, fmt.Errorf("decode description: %w", err)
	}
	if _, err := desc.values(); err != nil {
		return Description{}, err
	}
	return desc, nil
}

// LoadDescription reads a YAML description file
func LoadDescription(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, err
	}
	defer f.Close()
	return ReadDescription(f)
}

// WriteTo encodes desc as YAML
func (desc Description) WriteTo(w io.Writer) (int64, error) {
	out, err := yaml.Marshal(desc)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(out)
	return int64(n), err
}

// Save writes desc to a YAML file
func (desc Description) Save(path string) error {
	out, err := yaml.Marshal(desc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func (desc Description) String() string {
	header := "-"
	if desc.Header != nil {
		header = strconv.FormatBool(*desc.Header)
	}
	return fmt.Sprintf("encoding=%s delimiter=%s lineterminator=%s quotechar=%s header=%s",
		orDash(desc.Encoding), orDash(desc.Delimiter), orDash(desc.LineTerminator), orDash(desc.Quotechar), header)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
