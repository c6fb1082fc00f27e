package record

import (
	"fmt"
	"strings"
)

type Field struct {
	Type FieldType
	Name string
}

// Schema is an immutable, ordered list of typed fields. Field names are
// informational; equality only looks at types.
type Schema struct {
	fields []Field
	size   int
}

// NewSchema pairs types with names. names may be nil, in which case every
// field is anonymous.
func NewSchema(types []FieldType, names []string) (*Schema, error) {
	if len(types) == 0 {
		return nil, ErrEmptySchema
	}
	if names != nil && len(names) != len(types) {
		return nil, fmt.Errorf("%w: %d types, %d names", ErrSchemaMismatch, len(types), len(names))
	}
	fields := make([]Field, len(types))
	for i, t := range types {
		fields[i].Type = t
		if names != nil {
			fields[i].Name = names[i]
		}
	}
	return FromFields(fields...)
}

func FromFields(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, ErrEmptySchema
	}
	s := &Schema{fields: make([]Field, len(fields))}
	for i, f := range fields {
		if f.Type.Len() == 0 {
			return nil, fmt.Errorf("%w: field %d (%s)", ErrUnsupportedType, i, f.Type)
		}
		s.fields[i] = f
		s.size += f.Type.Len()
	}
	return s, nil
}

func (s *Schema) NumFields() int { return len(s.fields) }

// Size is the encoded width of one tuple of this schema in bytes.
func (s *Schema) Size() int { return s.size }

func (s *Schema) Field(i int) (Field, error) {
	if i < 0 || i >= len(s.fields) {
		return Field{}, fmt.Errorf("%w: index %d of %d", ErrNoSuchField, i, len(s.fields))
	}
	return s.fields[i], nil
}

func (s *Schema) FieldType(i int) (FieldType, error) {
	f, err := s.Field(i)
	return f.Type, err
}

func (s *Schema) FieldName(i int) (string, error) {
	f, err := s.Field(i)
	return f.Name, err
}

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// IndexOf returns the first field named name. An unqualified name also
// matches a qualified field "alias.name".
func (s *Schema) IndexOf(name string) (int, error) {
	if name == "" {
		return -1, fmt.Errorf("%w: empty name", ErrNoSuchField)
	}
	for i, f := range s.fields {
		if f.Name == name {
			return i, nil
		}
	}
	if !strings.Contains(name, ".") {
		for i, f := range s.fields {
			if j := strings.LastIndexByte(f.Name, '.'); j >= 0 && f.Name[j+1:] == name {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrNoSuchField, name)
}

// Equal reports whether both schemas have the same field types in the same order.
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil || len(s.fields) != len(o.fields) {
		return false
	}
	for i := range s.fields {
		if s.fields[i].Type != o.fields[i].Type {
			return false
		}
	}
	return true
}

// WithPrefix returns a copy whose field names are "alias.name".
// Anonymous fields become "alias.null".
func (s *Schema) WithPrefix(alias string) *Schema {
	out := &Schema{fields: make([]Field, len(s.fields)), size: s.size}
	for i, f := range s.fields {
		name := f.Name
		if name == "" {
			name = "null"
		}
		if alias != "" {
			name = alias + "." + name
		}
		out.fields[i] = Field{Type: f.Type, Name: name}
	}
	return out
}

func (s *Schema) String() string {
	var sb strings.Builder
	for i, f := range s.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s(%s)", f.Type, f.Name)
	}
	return sb.String()
}

// MergeSchemas concatenates a and b.
func MergeSchemas(a, b *Schema) *Schema {
	out := &Schema{fields: make([]Field, 0, len(a.fields)+len(b.fields)), size: a.size + b.size}
	out.fields = append(out.fields, a.fields...)
	out.fields = append(out.fields, b.fields...)
	return out
}
