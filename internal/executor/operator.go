package executor

import (
	"errors"

	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

var (
	ErrNilChild      = errors.New("executor: child operator is nil")
	ErrChildCount    = errors.New("executor: wrong number of children")
	ErrBadFieldIndex = errors.New("executor: field index out of range")
)

// Operator is one node of a pull-based execution tree.
//
// Lifecycle: Closed -> Open -> Closed. HasNext buffers one tuple of
// lookahead; Next returns it (or pulls a fresh one) and fails with
// common.ErrNoSuchElement when exhausted. Every call outside the Open
// state fails with common.ErrNotOpen.
type Operator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*record.Tuple, error)
	Rewind() error
	Close() error

	Schema() *record.Schema
	Children() []Operator
	SetChildren(children ...Operator) error
}

// DB is what operators need from the database: table lookup from the
// catalog and page/tuple access through the buffer pool.
type DB interface {
	DatabaseFile(id common.TableID) (*heap.HeapFile, error)
	TableName(id common.TableID) (string, error)

	heap.PageFetcher
	InsertTuple(tx transaction.ID, tableID common.TableID, t *record.Tuple) error
	DeleteTuple(tx transaction.ID, t *record.Tuple) error
}

// fetchFunc produces the next tuple, or (nil, nil) at end of input.
type fetchFunc func() (*record.Tuple, error)

// lookahead holds the open flag and the single buffered tuple shared by
// every operator. The concrete operator supplies fetch.
type lookahead struct {
	next   *record.Tuple
	opened bool
	fetch  fetchFunc
}

func (l *lookahead) HasNext() (bool, error) {
	if !l.opened {
		return false, common.ErrNotOpen
	}
	if l.next == nil {
		t, err := l.fetch()
		if err != nil {
			return false, err
		}
		l.next = t
	}
	return l.next != nil, nil
}

func (l *lookahead) Next() (*record.Tuple, error) {
	ok, err := l.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNoSuchElement
	}
	t := l.next
	l.next = nil
	return t, nil
}

func (l *lookahead) markOpened() {
	l.opened = true
	l.next = nil
}

func (l *lookahead) markClosed() {
	l.opened = false
	l.next = nil
}

// reset drops the buffered tuple; used by Rewind.
func (l *lookahead) reset() error {
	if !l.opened {
		return common.ErrNotOpen
	}
	l.next = nil
	return nil
}

// pull reads one tuple from child, or nil at end of input.
func pull(child Operator) (*record.Tuple, error) {
	ok, err := child.HasNext()
	if err != nil || !ok {
		return nil, err
	}
	return child.Next()
}

// drain reads every remaining tuple from child.
func drain(child Operator, fn func(*record.Tuple) error) error {
	for {
		t, err := pull(child)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}

func oneChild(children []Operator) (Operator, error) {
	if len(children) != 1 {
		return nil, ErrChildCount
	}
	if children[0] == nil {
		return nil, ErrNilChild
	}
	return children[0], nil
}
