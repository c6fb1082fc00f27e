package catalog

import (
	"fmt"

	"github.com/tuannm99/novaheap/internal/record"
)

// FieldMeta is one column as written in the schema file.
type FieldMeta struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Length int    `yaml:"length,omitempty"`
}

// TableMeta is one table entry of the schema file. File is resolved
// against the schema file's directory when relative.
type TableMeta struct {
	Name   string      `yaml:"name"`
	File   string      `yaml:"file"`
	Fields []FieldMeta `yaml:"fields"`
}

type SchemaFile struct {
	Tables []TableMeta `yaml:"tables"`
}

func (m TableMeta) Schema() (*record.Schema, error) {
	types := make([]record.FieldType, len(m.Fields))
	names := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		ft, err := record.ParseFieldType(f.Type, f.Length)
		if err != nil {
			return nil, fmt.Errorf("table %s field %q: %w", m.Name, f.Name, err)
		}
		types[i] = ft
		names[i] = f.Name
	}
	return record.NewSchema(types, names)
}

func MetaFor(name, file string, s *record.Schema) TableMeta {
	m := TableMeta{Name: name, File: file}
	for _, f := range s.Fields() {
		fm := FieldMeta{Name: f.Name, Type: "int"}
		if f.Type.Kind == record.KindString {
			fm.Type = "string"
			fm.Length = f.Type.MaxLen
		}
		m.Fields = append(m.Fields, fm)
	}
	return m
}
