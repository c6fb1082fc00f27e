package record

import "errors"

var (
	ErrSchemaMismatch  = errors.New("record: schema/values mismatch")
	ErrEmptySchema     = errors.New("record: schema must have at least one field")
	ErrNoSuchField     = errors.New("record: no such field")
	ErrUnsetField      = errors.New("record: field has no value")
	ErrBadBuffer       = errors.New("record: buffer underflow/overflow")
	ErrValueTooLong    = errors.New("record: string exceeds declared length")
	ErrUnsupportedType = errors.New("record: unsupported type")
)
