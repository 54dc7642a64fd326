package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedToken        = errors.New("unexpected token")
	ErrTruncatedInput         = errors.New("truncated input")
	ErrTruncatedString        = errors.New("string length exceeds remaining input")
	ErrUnterminatedList       = errors.New("unterminated list")
	ErrUnterminatedDictionary = errors.New("unterminated dictionary")
	ErrNonStringKey           = errors.New("dictionary key is not a byte string")
	ErrTooDeeplyNested        = errors.New("nesting exceeds maximum depth")
	ErrInvalidInteger         = errors.New("invalid integer")
	ErrTrailingData           = errors.New("trailing data after value")
)

// DecodeError is returned for any malformed input. Offset is the index of the byte where the
// violation was detected.
type DecodeError struct {
	Err    error
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decode_error(err error, offset int) *DecodeError {
	return &DecodeError{Err: err, Offset: offset}
}
