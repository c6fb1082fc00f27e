package record

import (
	"fmt"

	"github.com/tuannm99/novaheap/internal/alias/bx"
)

// EncodeTuple writes t into dst using the fixed-width layout of its schema:
// INT is a little-endian int32, STRING(n) is a u32 length followed by n
// bytes, zero padded. len(dst) must be exactly Schema().Size().
func EncodeTuple(t *Tuple, dst []byte) error {
	s := t.schema
	if len(dst) != s.Size() {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrBadBuffer, s.Size(), len(dst))
	}
	off := 0
	for i, f := range s.fields {
		v := t.values[i]
		if v == nil {
			return fmt.Errorf("%w: field %d", ErrUnsetField, i)
		}
		w := f.Type.Len()
		if err := encodeValue(f.Type, v, dst[off:off+w]); err != nil {
			return fmt.Errorf("field %d: %w", i, err)
		}
		off += w
	}
	return nil
}

func encodeValue(ft FieldType, v Value, dst []byte) error {
	switch ft.Kind {
	case KindInt:
		x, ok := v.(Int)
		if !ok {
			return ErrSchemaMismatch
		}
		bx.PutI32(dst, int32(x))
	case KindString:
		x, ok := v.(String)
		if !ok {
			return ErrSchemaMismatch
		}
		if len(x) > ft.MaxLen {
			return fmt.Errorf("%w: %d > %d", ErrValueTooLong, len(x), ft.MaxLen)
		}
		bx.PutU32(dst[:stringLenPrefix], uint32(len(x)))
		n := copy(dst[stringLenPrefix:], x)
		clear(dst[stringLenPrefix+n:])
	default:
		return ErrUnsupportedType
	}
	return nil
}

// DecodeTuple parses one fixed-width tuple. The result has no locator.
func DecodeTuple(s *Schema, src []byte) (*Tuple, error) {
	if len(src) < s.Size() {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrBadBuffer, s.Size(), len(src))
	}
	t := NewTuple(s)
	off := 0
	for i, f := range s.fields {
		w := f.Type.Len()
		buf := src[off : off+w]
		switch f.Type.Kind {
		case KindInt:
			t.values[i] = Int(bx.I32(buf))
		case KindString:
			l := int(bx.U32(buf[:stringLenPrefix]))
			if l > f.Type.MaxLen {
				return nil, fmt.Errorf("%w: field %d length %d > %d", ErrBadBuffer, i, l, f.Type.MaxLen)
			}
			t.values[i] = String(buf[stringLenPrefix : stringLenPrefix+l])
		default:
			return nil, ErrUnsupportedType
		}
		off += w
	}
	return t, nil
}
