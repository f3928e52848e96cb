package dialect

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrEncoding          = errors.New("could not infer encoding")
	ErrInvalidValue      = errors.New("invalid value")
	ErrNoDialect         = errors.New("could not determine dialect")
	ErrDecode            = errors.New("invalid byte sequence")
	ErrEncode            = errors.New("unrepresentable character")
	ErrBareQuote         = errors.New("bare quote in non-quoted field")
	ErrUnterminatedQuote = errors.New("quoted field not terminated")
	ErrNeedsQuoting      = errors.New("field needs quoting but the dialect has no quote character")
	ErrNoDelimiter       = errors.New("record has several fields but the dialect has no delimiter")
)

// EncodingError is returned when no supported encoding agrees with the
// charset detector after every sampling round.
type EncodingError struct {
	// Attempts is the number of sampling rounds that were tried.
	Attempts int

	// LastGuess is the detector's guess in the final round, "" if none.
	LastGuess string
}

// Error implements the error interface
func (e *EncodingError) Error() string {
	if e.LastGuess == "" {
		return fmt.Sprintf("%v after %d attempts: no detector guess", ErrEncoding, e.Attempts)
	}
	return fmt.Sprintf("%v after %d attempts: last guess %q is not a candidate", ErrEncoding, e.Attempts, e.LastGuess)
}

// Is makes errors.Is(err, ErrEncoding) match
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}

// TypeError is returned when a characteristic is assigned a value outside
// its variant set.
type TypeError struct {
	Characteristic Characteristic
	Value          any
}

// Error implements the error interface
func (e *TypeError) Error() string {
	return fmt.Sprintf("%v is not a valid %s", e.Value, e.Characteristic)
}

// Unwrap returns ErrInvalidValue
func (e *TypeError) Unwrap() error {
	return ErrInvalidValue
}

// ParseError reports a malformed row
type ParseError struct {
	Line int
	Err  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsEncodingError checks if an error is an EncodingError
func IsEncodingError(err error) bool {
	var encErr *EncodingError
	return errors.As(err, &encErr)
}

// IsTypeError checks if an error is a TypeError
func IsTypeError(err error) bool {
	var typeErr *TypeError
	return errors.As(err, &typeErr)
}
