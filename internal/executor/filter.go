package executor

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novaheap/internal/record"
)

var _ Operator = (*Filter)(nil)

// Filter keeps the child rows that satisfy a Matcher, in child order.
// Open drains the child once and keeps the survivors; Rewind replays them
// without touching the child again.
type Filter struct {
	lookahead
	pred    Matcher
	child   Operator
	matched []*record.Tuple
	pos     int
}

func NewFilter(pred Matcher, child Operator) (*Filter, error) {
	if pred == nil {
		return nil, fmt.Errorf("executor: filter predicate is nil")
	}
	if child == nil {
		return nil, ErrNilChild
	}
	f := &Filter{pred: pred, child: child}
	f.fetch = f.fetchNext
	return f, nil
}

func (f *Filter) Predicate() Matcher { return f.pred }

func (f *Filter) fetchNext() (*record.Tuple, error) {
	if f.pos >= len(f.matched) {
		return nil, nil
	}
	t := f.matched[f.pos]
	f.pos++
	return t, nil
}

func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return err
	}
	f.matched = f.matched[:0]
	err := drain(f.child, func(t *record.Tuple) error {
		ok, err := f.pred.Match(t)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		if ok {
			f.matched = append(f.matched, t)
		}
		return nil
	})
	if err != nil {
		return errors.Join(err, f.child.Close())
	}
	f.pos = 0
	f.markOpened()
	return nil
}

func (f *Filter) Rewind() error {
	if err := f.reset(); err != nil {
		return err
	}
	f.pos = 0
	return nil
}

func (f *Filter) Close() error {
	f.markClosed()
	f.matched = nil
	return f.child.Close()
}

func (f *Filter) Schema() *record.Schema { return f.child.Schema() }

func (f *Filter) Children() []Operator { return []Operator{f.child} }

func (f *Filter) SetChildren(children ...Operator) error {
	c, err := oneChild(children)
	if err != nil {
		return err
	}
	f.child = c
	return nil
}
