// Package wire holds the protobuf-style primitives shared by the flight and
// hotel query formats: varints, varint fields and length-delimited fields.
package wire

import (
	"errors"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

type (
	Number = protowire.Number
	Type   = protowire.Type
)

const (
	VarintType = protowire.VarintType
	BytesType  = protowire.BytesType
)

/********** encoding **********/

// EncodeVarint returns v as a base-128 varint, low group first.
func EncodeVarint(v uint32) []byte {
	return protowire.AppendVarint(nil, uint64(v))
}

// VarintField returns the tag for (num, varint) followed by v.
func VarintField(num Number, v uint64) []byte {
	return AppendVarintField(nil, num, v)
}

// LengthDelimitedField returns the tag for (num, bytes), the payload length
// and the payload itself.
func LengthDelimitedField(num Number, payload []byte) []byte {
	return AppendBytesField(nil, num, payload)
}

func AppendVarintField(b []byte, num Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func AppendBytesField(b []byte, num Number, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func AppendStringField(b []byte, num Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// AppendPacked writes vals as one length-delimited blob of raw varints.
// An empty slice writes nothing.
func AppendPacked(b []byte, num Number, vals []uint64) []byte {
	if len(vals) == 0 {
		return b
	}
	var payload []byte
	for _, v := range vals {
		payload = protowire.AppendVarint(payload, v)
	}
	return AppendBytesField(b, num, payload)
}

/********** decoding **********/

// Field is one decoded (tag, value) pair. Only varint and length-delimited
// values are retained; fixed-width and group values are consumed and dropped.
type Field struct {
	Num    Number
	Type   Type
	Offset int

	path  string
	value uint64
	bytes []byte
}

// Reader walks the fields of a single message.
type Reader struct {
	buf  []byte
	off  int
	path string
}

func NewReader(b []byte, path string) *Reader {
	return &Reader{buf: b, path: path}
}

// Next returns the next field, or io.EOF once the buffer is exhausted.
func (r *Reader) Next() (Field, error) {
	if r.off >= len(r.buf) {
		return Field{}, io.EOF
	}
	start := r.off
	num, typ, n := protowire.ConsumeTag(r.buf[r.off:])
	if n < 0 {
		if _, vn := protowire.ConsumeVarint(r.buf[r.off:]); vn < 0 {
			return Field{}, r.fail(0, start, ErrMalformedVarint)
		}
		return Field{}, r.fail(0, start, ErrInvalidTag)
	}
	r.off += n
	f := Field{Num: num, Type: typ, Offset: start, path: r.path}

	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(r.buf[r.off:])
		if n < 0 {
			return Field{}, r.fail(num, r.off, ErrMalformedVarint)
		}
		r.off += n
		f.value = v
	case protowire.BytesType:
		l, n := protowire.ConsumeVarint(r.buf[r.off:])
		if n < 0 {
			return Field{}, r.fail(num, r.off, ErrMalformedVarint)
		}
		r.off += n
		if l > uint64(len(r.buf)-r.off) {
			return Field{}, r.fail(num, r.off, ErrUnexpectedEOF)
		}
		f.bytes = r.buf[r.off : r.off+int(l)]
		r.off += int(l)
	default:
		n := protowire.ConsumeFieldValue(num, typ, r.buf[r.off:])
		if n < 0 {
			if errors.Is(protowire.ParseError(n), io.ErrUnexpectedEOF) {
				return Field{}, r.fail(num, r.off, ErrUnexpectedEOF)
			}
			return Field{}, r.fail(num, r.off, ErrWireType)
		}
		r.off += n
	}
	return f, nil
}

func (r *Reader) fail(num Number, off int, err error) error {
	return &DecodeError{Path: r.path, Field: num, Offset: off, Err: err}
}

// Walk calls fn for every field of the message in b, in wire order.
func Walk(b []byte, path string, fn func(Field) error) error {
	r := NewReader(b, path)
	for {
		f, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
}

/********** typed access **********/

func (f Field) Uint() (uint64, error) {
	if f.Type != protowire.VarintType {
		return 0, f.mismatch()
	}
	return f.value, nil
}

// Int32 reads a varint as a proto int32; negative values arrive sign-extended.
func (f Field) Int32() (int32, error) {
	v, err := f.Uint()
	return int32(v), err
}

func (f Field) Bool() (bool, error) {
	v, err := f.Uint()
	return protowire.DecodeBool(v), err
}

func (f Field) Payload() ([]byte, error) {
	if f.Type != protowire.BytesType {
		return nil, f.mismatch()
	}
	return f.bytes, nil
}

func (f Field) Text() (string, error) {
	b, err := f.Payload()
	return string(b), err
}

// Message walks the nested message carried by f.
func (f Field) Message(name string, fn func(Field) error) error {
	b, err := f.Payload()
	if err != nil {
		return err
	}
	return Walk(b, f.path+"."+name, fn)
}

// Varints reads a repeated scalar field. Both the packed form (one
// length-delimited blob) and a single unpacked entry are accepted.
func (f Field) Varints() ([]uint64, error) {
	switch f.Type {
	case protowire.VarintType:
		return []uint64{f.value}, nil
	case protowire.BytesType:
		out := make([]uint64, 0, len(f.bytes))
		for b, off := f.bytes, 0; off < len(b); {
			v, n := protowire.ConsumeVarint(b[off:])
			if n < 0 {
				return nil, &DecodeError{Path: f.path, Field: f.Num, Offset: f.Offset, Err: ErrMalformedVarint}
			}
			out = append(out, v)
			off += n
		}
		return out, nil
	default:
		return nil, f.mismatch()
	}
}

func (f Field) mismatch() error {
	return &DecodeError{Path: f.path, Field: f.Num, Offset: f.Offset, Value: uint64(f.Type), Err: ErrWireType}
}
