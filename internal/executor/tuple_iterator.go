package executor

import (
	"github.com/tuannm99/novaheap/internal/record"
)

var _ Operator = (*TupleIterator)(nil)

// TupleIterator is a leaf operator over an in-memory list of tuples.
type TupleIterator struct {
	lookahead
	schema *record.Schema
	tuples []*record.Tuple
	pos    int
}

func NewTupleIterator(schema *record.Schema, tuples []*record.Tuple) *TupleIterator {
	it := &TupleIterator{schema: schema, tuples: tuples}
	it.fetch = it.fetchNext
	return it
}

func (it *TupleIterator) fetchNext() (*record.Tuple, error) {
	if it.pos >= len(it.tuples) {
		return nil, nil
	}
	t := it.tuples[it.pos]
	it.pos++
	return t, nil
}

func (it *TupleIterator) Open() error {
	it.pos = 0
	it.markOpened()
	return nil
}

func (it *TupleIterator) Rewind() error {
	if err := it.reset(); err != nil {
		return err
	}
	it.pos = 0
	return nil
}

func (it *TupleIterator) Close() error {
	it.markClosed()
	return nil
}

func (it *TupleIterator) Schema() *record.Schema { return it.schema }

func (it *TupleIterator) Children() []Operator { return nil }

func (it *TupleIterator) SetChildren(children ...Operator) error {
	if len(children) != 0 {
		return ErrChildCount
	}
	return nil
}
