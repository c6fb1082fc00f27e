package executor

import (
	"fmt"

	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

var countSchema = mustCountSchema()

func mustCountSchema() *record.Schema {
	s, err := record.FromFields(record.Field{Type: record.IntType, Name: "count"})
	if err != nil {
		panic(err)
	}
	return s
}

// mutation is the single-fire body shared by Insert and Delete: the first
// fetch applies apply to every child row and yields a one-column count;
// later fetches yield nothing. A failed drain is not retried: later fetches
// return the same error. Rewind re-emits the count without running the
// mutation again.
type mutation struct {
	lookahead
	child   Operator
	apply   func(t *record.Tuple) error
	fired   bool
	err     error
	result  *record.Tuple
	emitted bool
}

func (m *mutation) fetchNext() (*record.Tuple, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.emitted {
		return nil, nil
	}
	if !m.fired {
		m.fired = true
		var n int32
		err := drain(m.child, func(t *record.Tuple) error {
			if err := m.apply(t); err != nil {
				return err
			}
			n++
			return nil
		})
		if err != nil {
			m.err = fmt.Errorf("%w (after %d rows)", err, n)
			return nil, m.err
		}
		res, err := record.NewTupleWith(countSchema, record.Int(n))
		if err != nil {
			m.err = err
			return nil, err
		}
		m.result = res
	}
	m.emitted = true
	return m.result, nil
}

func (m *mutation) Open() error {
	if err := m.child.Open(); err != nil {
		return err
	}
	m.fired = false
	m.err = nil
	m.result = nil
	m.emitted = false
	m.markOpened()
	return nil
}

func (m *mutation) Rewind() error {
	if err := m.reset(); err != nil {
		return err
	}
	m.emitted = false
	return nil
}

func (m *mutation) Close() error {
	m.markClosed()
	return m.child.Close()
}

// Schema is a single INT column named "count".
func (m *mutation) Schema() *record.Schema { return countSchema }

func (m *mutation) Children() []Operator { return []Operator{m.child} }

var _ Operator = (*Insert)(nil)

// Insert writes every child row into a table through the buffer pool.
type Insert struct {
	mutation
	tableID common.TableID
}

// NewInsert fails with record.ErrSchemaMismatch when the child's field
// types differ from the table's.
func NewInsert(tx transaction.ID, db DB, child Operator, tableID common.TableID) (*Insert, error) {
	if child == nil {
		return nil, ErrNilChild
	}
	hf, err := db.DatabaseFile(tableID)
	if err != nil {
		return nil, err
	}
	if !hf.Schema().Equal(child.Schema()) {
		return nil, fmt.Errorf("%w: insert (%s) into (%s)", record.ErrSchemaMismatch, child.Schema(), hf.Schema())
	}
	ins := &Insert{tableID: tableID}
	ins.child = child
	ins.apply = func(t *record.Tuple) error {
		row := t.Clone()
		row.ClearLocator()
		return db.InsertTuple(tx, tableID, row)
	}
	ins.fetch = ins.fetchNext
	return ins, nil
}

func (ins *Insert) TableID() common.TableID { return ins.tableID }

func (ins *Insert) SetChildren(children ...Operator) error {
	c, err := oneChild(children)
	if err != nil {
		return err
	}
	if !ins.child.Schema().Equal(c.Schema()) {
		return fmt.Errorf("%w: insert child (%s)", record.ErrSchemaMismatch, c.Schema())
	}
	ins.child = c
	return nil
}

var _ Operator = (*Delete)(nil)

// Delete removes every child row from the slot its locator points at.
type Delete struct {
	mutation
}

func NewDelete(tx transaction.ID, db DB, child Operator) (*Delete, error) {
	if child == nil {
		return nil, ErrNilChild
	}
	d := &Delete{}
	d.child = child
	d.apply = func(t *record.Tuple) error {
		return db.DeleteTuple(tx, t)
	}
	d.fetch = d.fetchNext
	return d, nil
}

func (d *Delete) SetChildren(children ...Operator) error {
	c, err := oneChild(children)
	if err != nil {
		return err
	}
	d.child = c
	return nil
}
