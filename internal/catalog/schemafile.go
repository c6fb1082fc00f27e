package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/storage/common"
)

// ReadSchemaFile parses a YAML schema file.
func ReadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return &sf, nil
}

// WriteSchemaFile overwrites path with sf.
func WriteSchemaFile(path string, sf *SchemaFile) error {
	data, err := yaml.Marshal(sf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), common.FileMode0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, common.FileMode0644)
}

// LoadSchema opens every table listed in the schema file and registers it.
// A missing schema file is not an error.
func (c *Catalog) LoadSchema(path string) error {
	sf, err := ReadSchemaFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	base := filepath.Dir(path)
	for _, tm := range sf.Tables {
		schema, err := tm.Schema()
		if err != nil {
			return err
		}
		file := tm.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		hf, err := heap.OpenHeapFile(file, schema)
		if err != nil {
			return fmt.Errorf("catalog: open table %s: %w", tm.Name, err)
		}
		if old := c.AddTable(tm.Name, hf); old != nil {
			_ = old.Close()
		}
	}
	return nil
}

// SaveSchema writes every registered table to path. Table files under the
// schema file's directory are stored relative to it.
func (c *Catalog) SaveSchema(path string) error {
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return err
	}

	sf := &SchemaFile{}
	for _, id := range c.TableIDs() {
		e, err := c.lookup(id)
		if err != nil {
			return err
		}
		file := e.file.Path()
		if abs, err := filepath.Abs(file); err == nil {
			if rel, err := filepath.Rel(base, abs); err == nil && filepath.IsLocal(rel) {
				file = rel
			}
		}
		sf.Tables = append(sf.Tables, MetaFor(e.name, file, e.file.Schema()))
	}
	return WriteSchemaFile(path, sf)
}
