package codec

import (
	"errors"
	"fmt"
)

// ErrUnmapped means a domain value has no wire integer. Validated requests
// never trigger it.
var ErrUnmapped = errors.New("value has no wire mapping")

// EncodeError is a codec invariant failure on the encode path.
type EncodeError struct {
	Field string
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Field, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func unmapped(field string, v any) error {
	return &EncodeError{Field: field, Err: fmt.Errorf("%w: %v", ErrUnmapped, v)}
}
