package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novaheap/internal/storage/common"
)

func newTestPageFile(t *testing.T) *PageFile {
	t.Helper()
	pf, err := OpenPageFile(filepath.Join(t.TempDir(), "tables", "t.dat"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pf.Close() })
	return pf
}

func TestPageFile_EmptyFile(t *testing.T) {
	pf := newTestPageFile(t)

	n, err := pf.NumPages()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	err = pf.ReadPage(0, make([]byte, common.PageSize))
	require.ErrorIs(t, err, common.ErrInvalidLocation)
}

func TestPageFile_WriteThenRead(t *testing.T) {
	pf := newTestPageFile(t)

	src := bytes.Repeat([]byte{0xAB}, common.PageSize)
	require.NoError(t, pf.WritePage(0, src))
	require.NoError(t, pf.WritePage(1, make([]byte, common.PageSize)))

	n, err := pf.NumPages()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	dst := make([]byte, common.PageSize)
	require.NoError(t, pf.ReadPage(0, dst))
	require.Equal(t, src, dst)

	err = pf.ReadPage(2, dst)
	require.ErrorIs(t, err, common.ErrInvalidLocation)
	err = pf.ReadPage(-1, dst)
	require.ErrorIs(t, err, common.ErrInvalidLocation)
}

func TestPageFile_PartialTrailingPageIsZeroFilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.dat")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	pf, err := OpenPageFile(path)
	require.NoError(t, err)
	defer func() { _ = pf.Close() }()

	n, err := pf.NumPages()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	dst := bytes.Repeat([]byte{0xFF}, common.PageSize)
	require.NoError(t, pf.ReadPage(0, dst))
	require.Equal(t, []byte{1, 2, 3}, dst[:3])
	require.Equal(t, make([]byte, common.PageSize-3), dst[3:])
}

func TestPageFile_BufferSizeChecked(t *testing.T) {
	pf := newTestPageFile(t)
	require.Error(t, pf.WritePage(0, make([]byte, 10)))
	require.Error(t, pf.ReadPage(0, make([]byte, 10)))
}

func TestTableIDFor_StableForEquivalentPaths(t *testing.T) {
	dir := t.TempDir()
	a, err := TableIDFor(filepath.Join(dir, "x.dat"))
	require.NoError(t, err)
	b, err := TableIDFor(filepath.Join(dir, "sub", "..", "x.dat"))
	require.NoError(t, err)
	c, err := TableIDFor(filepath.Join(dir, "y.dat"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
