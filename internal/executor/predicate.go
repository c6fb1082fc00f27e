package executor

import (
	"fmt"

	"github.com/tuannm99/novaheap/internal/record"
)

// Matcher decides whether a row passes a Filter.
type Matcher interface {
	Match(t *record.Tuple) (bool, error)
}

// MatchFunc adapts a plain function to Matcher.
type MatchFunc func(t *record.Tuple) (bool, error)

func (f MatchFunc) Match(t *record.Tuple) (bool, error) { return f(t) }

// Predicate compares one field of a row against a constant.
type Predicate struct {
	field   int
	op      record.Op
	operand record.Value
}

func NewPredicate(field int, op record.Op, operand record.Value) *Predicate {
	return &Predicate{field: field, op: op, operand: operand}
}

func (p *Predicate) Field() int            { return p.field }
func (p *Predicate) Op() record.Op         { return p.op }
func (p *Predicate) Operand() record.Value { return p.operand }

// Match is false for an unset field.
func (p *Predicate) Match(t *record.Tuple) (bool, error) {
	v, err := t.Value(p.field)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	return v.Compare(p.op, p.operand)
}

func (p *Predicate) String() string {
	return fmt.Sprintf("f = %d op = %s operand = %s", p.field, p.op, p.operand)
}
