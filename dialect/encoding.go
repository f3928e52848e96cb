package dialect

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding is a supported text encoding. Declaration order is the order in
// which candidates are reported.
type Encoding uint8

const (
	ASCII Encoding = iota
	ANSI
	ISO8859_1
	Windows1252
	UTF8BOM
	UTF8
	CP1252
	Latin1
	MacRoman
	UTF16BE
	UTF16LE
	UTF16
	UTF32BE
	UTF32LE
	UTF32
	CP850
	CP1250
	CP1251
	CP1253
)

type byteOrder uint8

const (
	bigEndian byteOrder = iota
	littleEndian
	bomOrLittle
)

type encodingInfo struct {
	name  string
	codec string
	text  encoding.Encoding
	valid func([]byte) bool
}

var encodings = [...]encodingInfo{
	ASCII:       {"ASCII", "ascii", unicode.UTF8, isASCII},
	ANSI:        {"ANSI", "ansi", charmap.Windows1252, charmapValid(charmap.Windows1252)},
	ISO8859_1:   {"ISO_8859_1", "iso-8859-1", charmap.ISO8859_1, charmapValid(charmap.ISO8859_1)},
	Windows1252: {"WINDOWS_1252", "windows-1252", charmap.Windows1252, charmapValid(charmap.Windows1252)},
	UTF8BOM:     {"UTF_8_BOM", "utf-8-sig", unicode.UTF8BOM, utf8.Valid},
	UTF8:        {"UTF_8", "utf-8", unicode.UTF8, utf8.Valid},
	CP1252:      {"CP1252", "cp1252", charmap.Windows1252, charmapValid(charmap.Windows1252)},
	Latin1:      {"LATIN_1", "latin_1", charmap.ISO8859_1, charmapValid(charmap.ISO8859_1)},
	MacRoman:    {"MACROMAN", "macroman", charmap.Macintosh, charmapValid(charmap.Macintosh)},
	UTF16BE:     {"UTF_16_BE", "utf-16-be", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), utf16Valid(bigEndian)},
	UTF16LE:     {"UTF_16_LE", "utf-16-le", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), utf16Valid(littleEndian)},
	UTF16:       {"UTF_16", "utf-16", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), utf16Valid(bomOrLittle)},
	UTF32BE:     {"UTF_32_BE", "utf-32-be", utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), utf32Valid(bigEndian)},
	UTF32LE:     {"UTF_32_LE", "utf-32-le", utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), utf32Valid(littleEndian)},
	UTF32:       {"UTF_32", "utf-32", utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), utf32Valid(bomOrLittle)},
	CP850:       {"CP850", "cp850", charmap.CodePage850, charmapValid(charmap.CodePage850)},
	CP1250:      {"CP1250", "cp1250", charmap.Windows1250, charmapValid(charmap.Windows1250)},
	CP1251:      {"CP1251", "cp1251", charmap.Windows1251, charmapValid(charmap.Windows1251)},
	CP1253:      {"CP1253", "cp1253", charmap.Windows1253, charmapValid(charmap.Windows1253)},
}

// Encodings returns every supported encoding in declaration order
func Encodings() []Encoding {
	out := make([]Encoding, len(encodings))
	for i := range encodings {
		out[i] = Encoding(i)
	}
	return out
}

func (e Encoding) IsValid() bool { return int(e) < len(encodings) }

// String returns the variant name, e.g. "UTF_8_BOM"
func (e Encoding) String() string {
	if !e.IsValid() {
		return "Encoding(" + strconv.Itoa(int(e)) + ")"
	}
	return encodings[e].name
}

// Codec returns the canonical decoder name, e.g. "utf-8-sig"
func (e Encoding) Codec() string {
	if !e.IsValid() {
		return ""
	}
	return encodings[e].codec
}

// TextEncoding returns the x/text implementation backing e
func (e Encoding) TextEncoding() encoding.Encoding {
	if !e.IsValid() {
		return encoding.Nop
	}
	return encodings[e].text
}

// CanDecode reports whether sample is a valid byte sequence in e
func (e Encoding) CanDecode(sample []byte) bool {
	if !e.IsValid() {
		return false
	}
	return encodings[e].valid(sample)
}

// Decode converts sample to UTF-8. BOM-aware encodings drop the BOM.
func (e Encoding) Decode(sample []byte) (string, error) {
	if !e.CanDecode(sample) {
		return "", fmt.Errorf("%w: sample is not valid %s", ErrDecode, e.Codec())
	}
	if e == ASCII {
		return string(sample), nil
	}
	out, err := encodings[e].text.NewDecoder().Bytes(sample)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecode, e.Codec(), err)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to e. Runes e cannot represent are an error.
func (e Encoding) Encode(text string) ([]byte, error) {
	if !e.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidValue, e)
	}
	if e == ASCII {
		if !isASCII([]byte(text)) {
			return nil, fmt.Errorf("%w: text is not ascii", ErrEncode)
		}
		return []byte(text), nil
	}
	out, err := encodings[e].text.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, e.Codec(), err)
	}
	return out, nil
}

// MarshalText implements encoding.TextMarshaler
func (e Encoding) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *Encoding) UnmarshalText(text []byte) error {
	parsed, ok := LookupEncoding(string(text))
	if !ok {
		return fmt.Errorf("unknown encoding %q", text)
	}
	*e = parsed
	return nil
}

func normalizeEncodingName(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToUpper(name))
}

// LookupEncoding resolves a name such as "utf-8", "UTF_16_LE", "UTF-8-SIG"
// or "windows-1252". Case, hyphens and underscores are ignored. Unknown
// names yield false.
func LookupEncoding(name string) (Encoding, bool) {
	n := normalizeEncodingName(name)
	if n == "" {
		return 0, false
	}
	for i, info := range encodings {
		if n == normalizeEncodingName(info.name) || n == normalizeEncodingName(info.codec) {
			return Encoding(i), true
		}
	}
	return 0, false
}

// Candidates returns every encoding that decodes sample without error
func Candidates(sample []byte) []Encoding {
	var out []Encoding
	for i, info := range encodings {
		if info.valid(sample) {
			out = append(out, Encoding(i))
		}
	}
	return out
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func charmapValid(cm *charmap.Charmap) func([]byte) bool {
	return func(b []byte) bool {
		for _, c := range b {
			if c >= utf8.RuneSelf && cm.DecodeByte(c) == utf8.RuneError {
				return false
			}
		}
		return true
	}
}

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
)

func utf16Valid(order byteOrder) func([]byte) bool {
	return func(b []byte) bool {
		big := order == bigEndian
		if order == bomOrLittle {
			switch {
			case bytes.HasPrefix(b, bomUTF16BE):
				b, big = b[2:], true
			case bytes.HasPrefix(b, bomUTF16LE):
				b = b[2:]
			}
		}
		if len(b)%2 != 0 {
			return false
		}

		pendingHigh := false
		for i := 0; i < len(b); i += 2 {
			var u uint16
			if big {
				u = uint16(b[i])<<8 | uint16(b[i+1])
			} else {
				u = uint16(b[i+1])<<8 | uint16(b[i])
			}
			r := rune(u)
			switch {
			case r >= 0xD800 && r < 0xDC00:
				if pendingHigh {
					return false
				}
				pendingHigh = true
			case utf16.IsSurrogate(r):
				if !pendingHigh {
					return false
				}
				pendingHigh = false
			default:
				if pendingHigh {
					return false
				}
			}
		}
		return !pendingHigh
	}
}

func utf32Valid(order byteOrder) func([]byte) bool {
	return func(b []byte) bool {
		big := order == bigEndian
		if order == bomOrLittle {
			switch {
			case bytes.HasPrefix(b, bomUTF32BE):
				b, big = b[4:], true
			case bytes.HasPrefix(b, bomUTF32LE):
				b = b[4:]
			}
		}
		if len(b)%4 != 0 {
			return false
		}

		for i := 0; i < len(b); i += 4 {
			var u uint32
			if big {
				u = uint32(b[i])<<24 | uint32(b[i+1])<<16 | uint32(b[i+2])<<8 | uint32(b[i+3])
			} else {
				u = uint32(b[i+3])<<24 | uint32(b[i+2])<<16 | uint32(b[i+1])<<8 | uint32(b[i])
			}
			if u > utf8.MaxRune || (u >= 0xD800 && u <= 0xDFFF) {
				return false
			}
		}
		return true
	}
}
