package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaheap/internal/record"
)

// run executes one CLI invocation against dataDir and returns its output.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NOVAHEAP_LOG_LEVEL", "error")

	a := &app{}
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := root.Execute()
	require.NoError(t, a.close())
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := run(t, dataDir, args...)
	require.NoError(t, err, out)
	return out
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "create-table", "orders", "id:int", "customer:string(8)", "amount:int")
	require.Contains(t, out, "CREATE TABLE orders (INT(id), STRING(8)(customer), INT(amount))")

	csvPath := writeCSV(t, "id,customer,amount\n1,ann,10\n2,bob,20\n3,ann,30\n4,cid,5\n")
	out = mustRun(t, dir, "load", "orders", csvPath, "--header")
	require.Equal(t, "INSERT 4\n", out)

	out = mustRun(t, dir, "scan", "orders", "--where", "amount >= 20")
	require.Contains(t, out, "orders.id | orders.customer | orders.amount")
	require.Contains(t, out, "(2 rows)")
	require.NotContains(t, out, "cid")

	out = mustRun(t, dir, "count", "orders")
	require.Contains(t, out, "count(orders.id)")
	require.Contains(t, out, "4")

	out = mustRun(t, dir, "aggregate", "orders", "sum", "amount", "--group-by", "customer", "--alias", "o")
	require.Contains(t, out, "o.customer | sum(o.amount)")
	require.Contains(t, out, "ann        | 40")
	require.Contains(t, out, "(3 rows)")

	out = mustRun(t, dir, "delete", "orders", "--where", "customer = 'ann'")
	require.Equal(t, "DELETE 2\n", out)

	out = mustRun(t, dir, "count", "orders")
	require.Contains(t, out, "2")

	out = mustRun(t, dir, "inspect", "orders")
	require.Contains(t, out, "slots/page")
	require.Contains(t, out, "page | used | free")

	out = mustRun(t, dir, "inspect", "orders", "0")
	require.Contains(t, out, "bob")

	out = mustRun(t, dir, "tables")
	require.Contains(t, out, "orders")
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "create-table", "t", "a:int")

	_, err := run(t, dir, "create-table", "t", "a:int")
	require.Error(t, err)

	_, err = run(t, dir, "scan", "missing")
	require.Error(t, err)

	_, err = run(t, dir, "delete", "t")
	require.ErrorContains(t, err, "--where or --all")

	_, err = run(t, dir, "aggregate", "t", "median", "a")
	require.Error(t, err)

	_, err = run(t, dir, "load", "t", writeCSV(t, "1,2\n"))
	require.Error(t, err)

	_, err = run(t, dir, "scan", "t", "--where", "a > x")
	require.Error(t, err)
}

func TestShellLine(t *testing.T) {
	t.Setenv("NOVAHEAP_LOG_LEVEL", "error")
	a := &app{dataDir: t.TempDir()}
	t.Cleanup(func() { _ = a.close() })
	_, err := a.database()
	require.NoError(t, err)

	var out bytes.Buffer
	require.False(t, runShellLine(a, &out, `create-table kv k:string(4) v:int`))
	require.False(t, runShellLine(a, &out, `scan kv --where "k = 'a b'"`))
	require.Contains(t, out.String(), "(0 rows)")

	out.Reset()
	require.False(t, runShellLine(a, &out, `scan nope`))
	require.Contains(t, out.String(), "error:")

	out.Reset()
	require.False(t, runShellLine(a, &out, `\help`))
	require.Contains(t, out.String(), "create-table")

	require.True(t, runShellLine(a, &out, "exit"))
}

func TestParseColumns(t *testing.T) {
	s, err := parseColumns([]string{"id:int", "name:string(12)", "note:string"})
	require.NoError(t, err)
	require.Equal(t, "INT(id), STRING(12)(name), STRING(128)(note)", s.String())

	for _, bad := range []string{"id", ":int", "x:float", "x:string(0)", "x:string(3"} {
		_, err := parseColumns([]string{bad})
		require.Error(t, err, bad)
	}
}

func TestParseWhere(t *testing.T) {
	s, err := parseColumns([]string{"id:int", "name:string(16)"})
	require.NoError(t, err)
	s = s.WithPrefix("u")

	p, err := parseWhere(s, "name LIKE 'an n'")
	require.NoError(t, err)
	require.Equal(t, 1, p.Field())
	require.Equal(t, record.Like, p.Op())
	require.Equal(t, record.String("an n"), p.Operand())

	p, err = parseWhere(s, "u.id <> 3")
	require.NoError(t, err)
	require.Equal(t, 0, p.Field())
	require.Equal(t, record.Int(3), p.Operand())

	for _, bad := range []string{"id", "nope = 1", "id ~ 1", "id = abc"} {
		_, err := parseWhere(s, bad)
		require.Error(t, err, bad)
	}
}

func TestReadCSV(t *testing.T) {
	s, err := parseColumns([]string{"id:int", "name:string(4)"})
	require.NoError(t, err)

	rows, err := readCSV(strings.NewReader("1, ann\n2,\"b,o\"\n"), s, false)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "2\tb,o", rows[1].String())

	_, err = readCSV(strings.NewReader("1,toolong\n"), s, false)
	require.ErrorIs(t, err, record.ErrValueTooLong)
	_, err = readCSV(strings.NewReader("1\n"), s, false)
	require.Error(t, err)
}

func TestSplitArgs(t *testing.T) {
	args, err := splitArgs(`scan t --where "name = 'a b'"  -g x`)
	require.NoError(t, err)
	require.Equal(t, []string{"scan", "t", "--where", "name = 'a b'", "-g", "x"}, args)

	args, err = splitArgs(`a ''`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", ""}, args)

	_, err = splitArgs(`scan "oops`)
	require.Error(t, err)
}
