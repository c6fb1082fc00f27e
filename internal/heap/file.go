package heap

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

// PageFetcher is how a HeapFile reaches pages during tuple-level operations.
// The buffer pool implements it, so heap code never reads pages behind its back.
type PageFetcher interface {
	GetPage(tx transaction.ID, pid common.PageID, perm transaction.Permissions) (*HeapPage, error)
}

// TupleFetcher is implemented by fetchers that can decode a page's tuples
// while the page is guarded against concurrent writers. FileIterator
// prefers it over GetPage followed by Tuples.
type TupleFetcher interface {
	PageTuples(tx transaction.ID, pid common.PageID) ([]*record.Tuple, error)
}

// HeapFile is one table: an unordered collection of fixed-width tuples
// stored in a single PageFile.
type HeapFile struct {
	id     common.TableID
	schema *record.Schema
	pf     *storage.PageFile
}

func OpenHeapFile(path string, schema *record.Schema) (*HeapFile, error) {
	if NumSlotsFor(schema.Size()) == 0 {
		return nil, fmt.Errorf("%w: width %d", ErrSchemaTooWide, schema.Size())
	}
	id, err := storage.TableIDFor(path)
	if err != nil {
		return nil, err
	}
	pf, err := storage.OpenPageFile(path)
	if err != nil {
		return nil, err
	}
	return &HeapFile{id: id, schema: schema, pf: pf}, nil
}

func (hf *HeapFile) ID() common.TableID { return hf.id }

func (hf *HeapFile) Schema() *record.Schema { return hf.schema }

func (hf *HeapFile) Path() string { return hf.pf.Path() }

func (hf *HeapFile) NumPages() (int, error) { return hf.pf.NumPages() }

func (hf *HeapFile) checkTable(pid common.PageID) error {
	if pid.Table != hf.id {
		return fmt.Errorf("%w: page %s does not belong to table %d", common.ErrInvalidLocation, pid, hf.id)
	}
	return nil
}

// ReadPage loads page pid straight from disk.
func (hf *HeapFile) ReadPage(pid common.PageID) (*HeapPage, error) {
	if err := hf.checkTable(pid); err != nil {
		return nil, err
	}
	buf := make([]byte, common.PageSize)
	if err := hf.pf.ReadPage(pid.PageNo, buf); err != nil {
		return nil, err
	}
	return NewHeapPage(pid, hf.schema, buf)
}

// WritePage writes the full page buffer at its offset.
func (hf *HeapFile) WritePage(p *HeapPage) error {
	if err := hf.checkTable(p.ID()); err != nil {
		return err
	}
	return hf.pf.WritePage(p.ID().PageNo, p.Data())
}

// InsertTuple puts t on the first page with a free slot, scanning in page
// order. When every page is full a zeroed page is appended to the file and
// loaded through fetch. It returns the single page it modified.
func (hf *HeapFile) InsertTuple(tx transaction.ID, t *record.Tuple, fetch PageFetcher) ([]*HeapPage, error) {
	if !hf.schema.Equal(t.Schema()) {
		return nil, fmt.Errorf("%w: table (%s), tuple (%s)", record.ErrSchemaMismatch, hf.schema, t.Schema())
	}
	// a tuple that cannot be encoded must not grow the file
	if err := record.EncodeTuple(t, make([]byte, hf.schema.Size())); err != nil {
		return nil, err
	}
	n, err := hf.NumPages()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		p, err := fetch.GetPage(tx, common.PageID{Table: hf.id, PageNo: i}, transaction.ReadWrite)
		if err != nil {
			return nil, err
		}
		if p.NumEmptySlots() == 0 {
			continue
		}
		if err := p.InsertTuple(t); err != nil {
			return nil, err
		}
		return []*HeapPage{p}, nil
	}

	if err := hf.pf.WritePage(n, NewEmptyPageData()); err != nil {
		return nil, err
	}
	p, err := fetch.GetPage(tx, common.PageID{Table: hf.id, PageNo: n}, transaction.ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := p.InsertTuple(t); err != nil {
		return nil, err
	}
	return []*HeapPage{p}, nil
}

// DeleteTuple clears the slot t's locator points at.
func (hf *HeapFile) DeleteTuple(tx transaction.ID, t *record.Tuple, fetch PageFetcher) ([]*HeapPage, error) {
	loc, ok := t.Locator()
	if !ok {
		return nil, fmt.Errorf("%w: tuple has no locator", common.ErrInvalidLocation)
	}
	if err := hf.checkTable(loc.Page); err != nil {
		return nil, err
	}
	p, err := fetch.GetPage(tx, loc.Page, transaction.ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := p.DeleteTuple(t); err != nil {
		return nil, err
	}
	return []*HeapPage{p}, nil
}

// Iterator returns a lazy scan over every stored tuple. It must be opened first.
func (hf *HeapFile) Iterator(tx transaction.ID, fetch PageFetcher) *FileIterator {
	return &FileIterator{hf: hf, tx: tx, fetch: fetch}
}

func (hf *HeapFile) Sync() error { return hf.pf.Sync() }

func (hf *HeapFile) Close() error {
	return errors.Join(hf.pf.Sync(), hf.pf.Close())
}
