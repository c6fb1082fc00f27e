package storage

import (
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"

	"github.com/tuannm99/novaheap/internal/storage/common"
)

// PageFile is a single table file addressed in PageSize units.
// Page n lives at byte offset n*PageSize. The file is never truncated.
type PageFile struct {
	path string
	f    *os.File
}

// OpenPageFile opens (or creates) the file at path, creating parent dirs.
func OpenPageFile(path string) (*PageFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), common.FileMode0755); err != nil {
		return nil, common.IOError("mkdir", err)
	}
	// RDWR | CREATE (no truncate)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, common.FileMode0644)
	if err != nil {
		return nil, common.IOError("open", err)
	}
	return &PageFile{path: path, f: f}, nil
}

func (pf *PageFile) Path() string { return pf.path }

// NumPages is ceil(fileSize / PageSize); a trailing partial page counts.
func (pf *PageFile) NumPages() (int, error) {
	info, err := pf.f.Stat()
	if err != nil {
		return 0, common.IOError("stat", err)
	}
	size := info.Size()
	return int((size + common.PageSize - 1) / common.PageSize), nil
}

// ReadPage reads exactly one page into dst. Pages at or beyond NumPages are
// an invalid location. A short trailing page is zero-filled.
func (pf *PageFile) ReadPage(pageNo int, dst []byte) error {
	if len(dst) != common.PageSize {
		return fmt.Errorf("dst must be exactly %d bytes", common.PageSize)
	}
	n, err := pf.NumPages()
	if err != nil {
		return err
	}
	if pageNo < 0 || pageNo >= n {
		return fmt.Errorf("%w: page %d of %d in %s", common.ErrInvalidLocation, pageNo, n, pf.path)
	}

	read, err := pf.f.ReadAt(dst, int64(pageNo)*common.PageSize)
	if err != nil && err != io.EOF {
		return common.IOError("read", err)
	}
	clear(dst[read:])
	return nil
}

// WritePage writes exactly one page at pageNo, growing the file when
// pageNo == NumPages.
func (pf *PageFile) WritePage(pageNo int, src []byte) error {
	if len(src) != common.PageSize {
		return fmt.Errorf("src must be exactly %d bytes", common.PageSize)
	}
	if pageNo < 0 {
		return fmt.Errorf("%w: page %d", common.ErrInvalidLocation, pageNo)
	}
	n, err := pf.f.WriteAt(src, int64(pageNo)*common.PageSize)
	if err != nil {
		return common.IOError("write", err)
	}
	if n != common.PageSize {
		return common.IOError("write", io.ErrShortWrite)
	}
	return nil
}

func (pf *PageFile) Sync() error {
	return common.IOError("sync", pf.f.Sync())
}

func (pf *PageFile) Close() error {
	return common.IOError("close", pf.f.Close())
}

// TableIDFor derives a stable table id from the absolute, cleaned path.
func TableIDFor(path string) (common.TableID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(filepath.Clean(abs)))
	return common.TableID(h.Sum32()), nil
}
