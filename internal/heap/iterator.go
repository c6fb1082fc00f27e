package heap

import (
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

// FileIterator walks a HeapFile page by page in (page, slot) order.
// Only the current page's tuples are held in memory. The page count is
// taken at Open, so pages appended during the scan are not visited.
type FileIterator struct {
	hf    *HeapFile
	tx    transaction.ID
	fetch PageFetcher

	open     bool
	numPages int
	nextPage int
	tuples   []*record.Tuple
	pos      int
}

func (it *FileIterator) Open() error {
	n, err := it.hf.NumPages()
	if err != nil {
		return err
	}
	it.numPages = n
	it.nextPage = 0
	it.tuples = nil
	it.pos = 0
	it.open = true
	return nil
}

func (it *FileIterator) HasNext() (bool, error) {
	if !it.open {
		return false, common.ErrNotOpen
	}
	for it.pos >= len(it.tuples) {
		if it.nextPage >= it.numPages {
			return false, nil
		}
		tuples, err := it.pageTuples(common.PageID{Table: it.hf.id, PageNo: it.nextPage})
		if err != nil {
			return false, err
		}
		it.tuples = tuples
		it.pos = 0
		it.nextPage++
	}
	return true, nil
}

func (it *FileIterator) pageTuples(pid common.PageID) ([]*record.Tuple, error) {
	if tf, ok := it.fetch.(TupleFetcher); ok {
		return tf.PageTuples(it.tx, pid)
	}
	p, err := it.fetch.GetPage(it.tx, pid, transaction.ReadOnly)
	if err != nil {
		return nil, err
	}
	return p.Tuples()
}

func (it *FileIterator) Next() (*record.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoSuchElement
	}
	t := it.tuples[it.pos]
	it.pos++
	return t, nil
}

func (it *FileIterator) Rewind() error {
	it.Close()
	return it.Open()
}

func (it *FileIterator) Close() {
	it.open = false
	it.tuples = nil
}
