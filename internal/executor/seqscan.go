package executor

import (
	"fmt"

	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

var _ Operator = (*SeqScan)(nil)

// SeqScan reads every tuple of one table, page by page through the buffer
// pool. Output field names are qualified as "alias.field".
type SeqScan struct {
	lookahead
	db      DB
	tx      transaction.ID
	tableID common.TableID
	name    string
	alias   string
	schema  *record.Schema
	file    *heap.HeapFile
	it      *heap.FileIterator
}

// NewSeqScan scans tableID. An empty alias defaults to the table name.
func NewSeqScan(tx transaction.ID, db DB, tableID common.TableID, alias string) (*SeqScan, error) {
	s := &SeqScan{db: db, tx: tx}
	s.fetch = s.fetchNext
	if err := s.Reset(tableID, alias); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset points the scan at another table. An open scan is closed first.
func (s *SeqScan) Reset(tableID common.TableID, alias string) error {
	hf, err := s.db.DatabaseFile(tableID)
	if err != nil {
		return err
	}
	name, err := s.db.TableName(tableID)
	if err != nil {
		return err
	}
	if alias == "" {
		alias = name
	}
	if s.opened {
		_ = s.Close()
	}
	s.tableID = tableID
	s.name = name
	s.alias = alias
	s.file = hf
	s.schema = hf.Schema().WithPrefix(alias)
	return nil
}

func (s *SeqScan) TableName() string { return s.name }

func (s *SeqScan) Alias() string { return s.alias }

func (s *SeqScan) TableID() common.TableID { return s.tableID }

func (s *SeqScan) fetchNext() (*record.Tuple, error) {
	ok, err := s.it.HasNext()
	if err != nil || !ok {
		return nil, err
	}
	t, err := s.it.Next()
	if err != nil {
		return nil, err
	}
	if err := t.Rebind(s.schema); err != nil {
		return nil, fmt.Errorf("seqscan %s: %w", s.alias, err)
	}
	return t, nil
}

func (s *SeqScan) Open() error {
	s.it = s.file.Iterator(s.tx, s.db)
	if err := s.it.Open(); err != nil {
		return err
	}
	s.markOpened()
	return nil
}

func (s *SeqScan) Rewind() error {
	if err := s.reset(); err != nil {
		return err
	}
	return s.it.Rewind()
}

func (s *SeqScan) Close() error {
	if s.it != nil {
		s.it.Close()
	}
	s.markClosed()
	return nil
}

func (s *SeqScan) Schema() *record.Schema { return s.schema }

func (s *SeqScan) Children() []Operator { return nil }

func (s *SeqScan) SetChildren(children ...Operator) error {
	if len(children) != 0 {
		return ErrChildCount
	}
	return nil
}
