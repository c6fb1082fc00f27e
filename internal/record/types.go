package record

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindInt Kind = iota + 1
	KindString
)

const (
	IntLen           = 4
	DefaultStringLen = 128

	// strings are stored as a u32 length followed by MaxLen bytes
	stringLenPrefix = 4
)

// FieldType is a fixed-width primitive kind. It is comparable with ==;
// two STRING types with different maximum lengths are different types.
type FieldType struct {
	Kind   Kind
	MaxLen int
}

var IntType = FieldType{Kind: KindInt}

func StringType(maxLen int) FieldType {
	if maxLen <= 0 {
		maxLen = DefaultStringLen
	}
	return FieldType{Kind: KindString, MaxLen: maxLen}
}

// Len is the on-disk width of one value of this type.
func (ft FieldType) Len() int {
	switch ft.Kind {
	case KindInt:
		return IntLen
	case KindString:
		return stringLenPrefix + ft.MaxLen
	default:
		return 0
	}
}

func (ft FieldType) String() string {
	switch ft.Kind {
	case KindInt:
		return "INT"
	case KindString:
		return fmt.Sprintf("STRING(%d)", ft.MaxLen)
	default:
		return fmt.Sprintf("UNKNOWN(%d)", ft.Kind)
	}
}

// ParseFieldType accepts "int" / "string" (any case); maxLen only matters for strings.
func ParseFieldType(name string, maxLen int) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "integer", "int_type":
		return IntType, nil
	case "string", "str", "text", "string_type":
		return StringType(maxLen), nil
	default:
		return FieldType{}, fmt.Errorf("record: unknown field type %q", name)
	}
}
