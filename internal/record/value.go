package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a comparison operator between two values.
type Op uint8

const (
	Equals Op = iota + 1
	NotEquals
	LessThan
	LessThanOrEq
	GreaterThan
	GreaterThanOrEq
	Like
)

func (op Op) String() string {
	switch op {
	case Equals:
		return "="
	case NotEquals:
		return "<>"
	case LessThan:
		return "<"
	case LessThanOrEq:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEq:
		return ">="
	case Like:
		return "LIKE"
	default:
		return fmt.Sprintf("Op(%d)", op)
	}
}

func ParseOp(s string) (Op, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "=", "==":
		return Equals, nil
	case "<>", "!=":
		return NotEquals, nil
	case "<":
		return LessThan, nil
	case "<=":
		return LessThanOrEq, nil
	case ">":
		return GreaterThan, nil
	case ">=":
		return GreaterThanOrEq, nil
	case "LIKE":
		return Like, nil
	default:
		return 0, fmt.Errorf("record: unknown operator %q", s)
	}
}

// Value is one typed field value. Implementations are comparable and can be
// used as map keys.
type Value interface {
	Kind() Kind
	Compare(op Op, other Value) (bool, error)
	String() string
}

var (
	_ Value = Int(0)
	_ Value = String("")
)

type Int int32

func (Int) Kind() Kind { return KindInt }

func (v Int) String() string { return strconv.Itoa(int(v)) }

func (v Int) Compare(op Op, other Value) (bool, error) {
	o, ok := other.(Int)
	if !ok {
		return false, fmt.Errorf("%w: compare INT with %T", ErrSchemaMismatch, other)
	}
	return compareOrdered(op, v, o)
}

type String string

func (String) Kind() Kind { return KindString }

func (v String) String() string { return string(v) }

func (v String) Compare(op Op, other Value) (bool, error) {
	o, ok := other.(String)
	if !ok {
		return false, fmt.Errorf("%w: compare STRING with %T", ErrSchemaMismatch, other)
	}
	if op == Like {
		return strings.Contains(string(v), string(o)), nil
	}
	return compareOrdered(op, v, o)
}

func compareOrdered[T Int | String](op Op, a, b T) (bool, error) {
	switch op {
	case Equals, Like:
		return a == b, nil
	case NotEquals:
		return a != b, nil
	case LessThan:
		return a < b, nil
	case LessThanOrEq:
		return a <= b, nil
	case GreaterThan:
		return a > b, nil
	case GreaterThanOrEq:
		return a >= b, nil
	default:
		return false, fmt.Errorf("record: unsupported operator %v", op)
	}
}

// ParseValue converts text into a value of type ft.
func ParseValue(ft FieldType, s string) (Value, error) {
	switch ft.Kind {
	case KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("record: parse INT %q: %w", s, err)
		}
		return Int(n), nil
	case KindString:
		if len(s) > ft.MaxLen {
			return nil, fmt.Errorf("%w: %d > %d", ErrValueTooLong, len(s), ft.MaxLen)
		}
		return String(s), nil
	default:
		return nil, ErrUnsupportedType
	}
}
