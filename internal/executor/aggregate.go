package executor

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novaheap/internal/record"
)

var _ Operator = (*Aggregate)(nil)

// Aggregate computes one aggregate over its child, optionally grouped by
// another field. Open consumes the whole child; the per-group results are
// then replayed by Next and Rewind.
type Aggregate struct {
	lookahead
	child      Operator
	aggField   int
	groupField int
	op         AggregateOp

	schema  *record.Schema
	results []*record.Tuple
	pos     int
}

// NewAggregate aggregates aggField of child with op. groupField is a child
// field index or NoGrouping.
func NewAggregate(child Operator, aggField, groupField int, op AggregateOp) (*Aggregate, error) {
	if child == nil {
		return nil, ErrNilChild
	}
	a := &Aggregate{aggField: aggField, groupField: groupField, op: op}
	a.fetch = a.fetchNext
	if err := a.SetChildren(child); err != nil {
		return nil, err
	}
	return a, nil
}

// newAggregator validates the field indexes against the child schema and
// picks the aggregator for the aggregated field's type.
func (a *Aggregate) newAggregator() (Aggregator, error) {
	cs := a.child.Schema()
	af, err := cs.Field(a.aggField)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate field %d", ErrBadFieldIndex, a.aggField)
	}
	spec := AggregateSpec{
		GroupField: a.groupField,
		AggField:   a.aggField,
		AggName:    af.Name,
		Op:         a.op,
	}
	if a.groupField != NoGrouping {
		gf, err := cs.Field(a.groupField)
		if err != nil {
			return nil, fmt.Errorf("%w: group field %d", ErrBadFieldIndex, a.groupField)
		}
		spec.GroupType = gf.Type
		spec.GroupName = gf.Name
	}
	switch af.Type.Kind {
	case record.KindInt:
		return NewIntAggregator(spec)
	case record.KindString:
		return NewStringAggregator(spec)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAggregate, af.Type)
	}
}

func (a *Aggregate) GroupField() int { return a.groupField }

// GroupFieldName is empty without grouping.
func (a *Aggregate) GroupFieldName() string {
	if a.groupField == NoGrouping {
		return ""
	}
	name, _ := a.child.Schema().FieldName(a.groupField)
	return name
}

func (a *Aggregate) AggregateField() int { return a.aggField }

func (a *Aggregate) AggregateFieldName() string {
	name, _ := a.child.Schema().FieldName(a.aggField)
	return name
}

func (a *Aggregate) AggregateOp() AggregateOp { return a.op }

// NameOf is the lower-case SQL name of op.
func NameOf(op AggregateOp) string { return op.String() }

func (a *Aggregate) fetchNext() (*record.Tuple, error) {
	if a.pos >= len(a.results) {
		return nil, nil
	}
	t := a.results[a.pos]
	a.pos++
	return t, nil
}

func (a *Aggregate) Open() error {
	agg, err := a.newAggregator()
	if err != nil {
		return err
	}
	if err := a.child.Open(); err != nil {
		return err
	}
	if err := drain(a.child, agg.Merge); err != nil {
		return errors.Join(fmt.Errorf("aggregate: %w", err), a.child.Close())
	}
	results, err := agg.Results()
	if err != nil {
		return errors.Join(err, a.child.Close())
	}
	a.results = results
	a.pos = 0
	a.markOpened()
	return nil
}

func (a *Aggregate) Rewind() error {
	if err := a.reset(); err != nil {
		return err
	}
	a.pos = 0
	return nil
}

func (a *Aggregate) Close() error {
	a.markClosed()
	a.results = nil
	return a.child.Close()
}

// Schema is (group, op(aggField)) or (op(aggField)) without grouping.
func (a *Aggregate) Schema() *record.Schema { return a.schema }

func (a *Aggregate) Children() []Operator { return []Operator{a.child} }

func (a *Aggregate) SetChildren(children ...Operator) error {
	c, err := oneChild(children)
	if err != nil {
		return err
	}
	prev := a.child
	a.child = c
	agg, err := a.newAggregator()
	if err != nil {
		a.child = prev
		return err
	}
	a.schema = agg.Schema()
	return nil
}
