package record

import (
	"fmt"
	"strings"

	"github.com/tuannm99/novaheap/internal/storage/common"
)

// Tuple is one row: a schema, one value per field and, once stored, the
// locator of the slot it lives in.
type Tuple struct {
	schema *Schema
	values []Value
	loc    *common.RecordLocator
}

func NewTuple(s *Schema) *Tuple {
	return &Tuple{schema: s, values: make([]Value, s.NumFields())}
}

// NewTupleWith builds a tuple and sets every field in order.
func NewTupleWith(s *Schema, vals ...Value) (*Tuple, error) {
	if len(vals) != s.NumFields() {
		return nil, fmt.Errorf("%w: %d values for %d fields", ErrSchemaMismatch, len(vals), s.NumFields())
	}
	t := NewTuple(s)
	for i, v := range vals {
		if err := t.Set(i, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tuple) Schema() *Schema { return t.schema }

// Set stores v in field i. A nil v clears the field.
func (t *Tuple) Set(i int, v Value) error {
	ft, err := t.schema.FieldType(i)
	if err != nil {
		return err
	}
	if v != nil && v.Kind() != ft.Kind {
		return fmt.Errorf("%w: field %d is %s, got %T", ErrSchemaMismatch, i, ft, v)
	}
	t.values[i] = v
	return nil
}

// Value returns field i, nil if it was never set.
func (t *Tuple) Value(i int) (Value, error) {
	if i < 0 || i >= len(t.values) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNoSuchField, i, len(t.values))
	}
	return t.values[i], nil
}

func (t *Tuple) Values() []Value {
	out := make([]Value, len(t.values))
	copy(out, t.values)
	return out
}

func (t *Tuple) Locator() (common.RecordLocator, bool) {
	if t.loc == nil {
		return common.RecordLocator{}, false
	}
	return *t.loc, true
}

func (t *Tuple) SetLocator(loc common.RecordLocator) {
	l := loc
	t.loc = &l
}

func (t *Tuple) ClearLocator() { t.loc = nil }

// ResetSchema swaps the schema and drops every value.
func (t *Tuple) ResetSchema(s *Schema) {
	t.schema = s
	t.values = make([]Value, s.NumFields())
	t.loc = nil
}

// Rebind attaches a type-equal schema (e.g. one with qualified names),
// keeping values and locator.
func (t *Tuple) Rebind(s *Schema) error {
	if !t.schema.Equal(s) {
		return fmt.Errorf("%w: rebind (%s) to (%s)", ErrSchemaMismatch, t.schema, s)
	}
	t.schema = s
	return nil
}

// Clone copies values and locator; the schema is shared.
func (t *Tuple) Clone() *Tuple {
	out := &Tuple{schema: t.schema, values: t.Values()}
	if t.loc != nil {
		out.SetLocator(*t.loc)
	}
	return out
}

// String renders the values tab separated.
func (t *Tuple) String() string {
	var sb strings.Builder
	for i, v := range t.values {
		if i > 0 {
			sb.WriteByte('\t')
		}
		if v == nil {
			sb.WriteString("null")
			continue
		}
		sb.WriteString(v.String())
	}
	return sb.String()
}

// MergeTuples concatenates a and b under the merged schema. The result has no locator.
func MergeTuples(a, b *Tuple) *Tuple {
	out := NewTuple(MergeSchemas(a.schema, b.schema))
	n := copy(out.values, a.values)
	copy(out.values[n:], b.values)
	return out
}
