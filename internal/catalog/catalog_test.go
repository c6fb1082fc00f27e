package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
)

func usersSchema(t *testing.T) *record.Schema {
	t.Helper()
	s, err := record.NewSchema(
		[]record.FieldType{record.IntType, record.StringType(32)},
		[]string{"id", "name"},
	)
	require.NoError(t, err)
	return s
}

func openFile(t *testing.T, path string, s *record.Schema) *heap.HeapFile {
	t.Helper()
	hf, err := heap.OpenHeapFile(path, s)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hf.Close() })
	return hf
}

func TestCatalog_AddAndLookup(t *testing.T) {
	dir := t.TempDir()
	c := New()
	s := usersSchema(t)
	users := openFile(t, filepath.Join(dir, "users.dat"), s)
	orders := openFile(t, filepath.Join(dir, "orders.dat"), s)

	require.Nil(t, c.AddTable("users", users))
	require.Nil(t, c.AddTable("orders", orders))

	id, err := c.TableID("users")
	require.NoError(t, err)
	require.Equal(t, users.ID(), id)

	name, err := c.TableName(orders.ID())
	require.NoError(t, err)
	require.Equal(t, "orders", name)

	hf, err := c.DatabaseFile(users.ID())
	require.NoError(t, err)
	require.Same(t, users, hf)

	got, err := c.Schema(users.ID())
	require.NoError(t, err)
	require.True(t, got.Equal(s))

	require.Equal(t, []common.TableID{orders.ID(), users.ID()}, c.TableIDs())
	require.True(t, c.HasTable("users"))

	_, err = c.TableID("nope")
	require.ErrorIs(t, err, ErrNoSuchTable)
	_, err = c.DatabaseFile(12345)
	require.ErrorIs(t, err, ErrNoSuchTable)
}

func TestCatalog_AddTableReplaces(t *testing.T) {
	dir := t.TempDir()
	c := New()
	s := usersSchema(t)
	first := openFile(t, filepath.Join(dir, "a.dat"), s)
	second := openFile(t, filepath.Join(dir, "b.dat"), s)

	c.AddTable("t", first)
	replaced := c.AddTable("t", second)
	require.Same(t, first, replaced)

	_, err := c.TableName(first.ID())
	require.ErrorIs(t, err, ErrNoSuchTable)

	// same file under a new name drops the old name
	require.Nil(t, c.AddTable("renamed", second))
	require.False(t, c.HasTable("t"))
	require.Len(t, c.TableIDs(), 1)

	c.Clear()
	require.Empty(t, c.TableIDs())
}

func TestCatalog_SaveAndLoadSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.yaml")

	c := New()
	s := usersSchema(t)
	c.AddTable("users", openFile(t, filepath.Join(dir, "tables", "users.dat"), s))
	require.NoError(t, c.SaveSchema(schemaPath))

	raw, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	require.Contains(t, string(raw), "file: tables/users.dat")
	require.Contains(t, string(raw), "length: 32")

	loaded := New()
	require.NoError(t, loaded.LoadSchema(schemaPath))
	t.Cleanup(func() { _ = loaded.Close() })

	id, err := loaded.TableID("users")
	require.NoError(t, err)
	got, err := loaded.Schema(id)
	require.NoError(t, err)
	require.True(t, got.Equal(s))
	name, _ := got.FieldName(1)
	require.Equal(t, "name", name)
}

func TestCatalog_LoadSchemaMissingFile(t *testing.T) {
	c := New()
	require.NoError(t, c.LoadSchema(filepath.Join(t.TempDir(), "absent.yaml")))
	require.Empty(t, c.TableIDs())
}

func TestCatalog_LoadSchemaBadType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tables:
  - name: t
    file: t.dat
    fields:
      - name: x
        type: float
`), 0o644))

	err := New().LoadSchema(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown field type")
}

func TestTableMeta_RoundTrip(t *testing.T) {
	s := usersSchema(t)
	m := MetaFor("users", "users.dat", s)
	require.Equal(t, []FieldMeta{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "string", Length: 32},
	}, m.Fields)

	back, err := m.Schema()
	require.NoError(t, err)
	require.True(t, back.Equal(s))
}
