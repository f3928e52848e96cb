package dialect

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// FieldType is the inferred type of a single field value
type FieldType uint8

const (
	FieldString FieldType = iota
	FieldInt
	FieldFloat
	FieldDateTime
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "int"
	case FieldFloat:
		return "float"
	case FieldDateTime:
		return "datetime"
	}
	return "string"
}

// dateLayouts are tried in order. Day, month, hour, minute and second
// accept one or two digits.
var dateLayouts = []string{
	"2-1-2006",
	"2006-1-2",
	"2006/1/2",
	"2006-1-2 15",
	"2006-1-2 15:4",
	"2006-1-2 15:4:5",
	"2006-1-2 15:4:5.999999",
	"2006-1-2 15:4:5 Z0700",
	"2006-1-2 15:4:5 Z07:00",
}

// DetectFieldType classifies a field as int, float, date/time or string,
// trying them in that order.
func DetectFieldType(field string) FieldType {
	trimmed := strings.TrimSpace(field)
	if trimmed != "" {
		if _, err := strconv.ParseInt(trimmed, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
			return FieldInt
		}
		if isFloat(trimmed) {
			return FieldFloat
		}
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, field); err == nil {
			return FieldDateTime
		}
	}
	return FieldString
}

func isFloat(s string) bool {
	// strconv also accepts hexadecimal mantissas, which are not numbers here
	lower := strings.ToLower(strings.TrimLeft(s, "+-"))
	if strings.HasPrefix(lower, "0x") {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
