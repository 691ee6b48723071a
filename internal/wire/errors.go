package wire

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedVarint = errors.New("malformed varint")
	ErrUnexpectedEOF   = errors.New("unexpected end of buffer")
	ErrWireType        = errors.New("unexpected wire type")
	ErrInvalidTag      = errors.New("invalid field tag")
	ErrInvalidEnum     = errors.New("invalid enum value")
)

// DecodeError locates a decoding failure inside a nested message.
// Offset is relative to the message named by Path.
type DecodeError struct {
	Path   string
	Field  Number
	Offset int
	Value  uint64
	Err    error
}

func (e *DecodeError) Error() string {
	where := e.Path
	if e.Field != 0 {
		where = fmt.Sprintf("%s field %d", where, e.Field)
	}
	if errors.Is(e.Err, ErrInvalidEnum) {
		return fmt.Sprintf("decode %s: %v %d at offset %d", where, e.Err, e.Value, e.Offset)
	}
	return fmt.Sprintf("decode %s: %v at offset %d", where, e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvalidEnum reports a wire value on f that has no domain mapping.
func InvalidEnum(f Field, v uint64) error {
	return &DecodeError{Path: f.path, Field: f.Num, Offset: f.Offset, Value: v, Err: ErrInvalidEnum}
}
