package executor

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tuannm99/novaheap/internal/record"
)

// NoGrouping marks an aggregate without a GROUP BY field.
const NoGrouping = -1

var (
	ErrUnsupportedAggregate = errors.New("executor: unsupported aggregate for field type")
	ErrAggregateOverflow    = errors.New("executor: aggregate result overflows INT")
)

type AggregateOp uint8

const (
	Min AggregateOp = iota
	Max
	Sum
	Avg
	Count
)

func (op AggregateOp) String() string {
	switch op {
	case Min:
		return "min"
	case Max:
		return "max"
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Count:
		return "count"
	default:
		return fmt.Sprintf("agg(%d)", uint8(op))
	}
}

func ParseAggregateOp(s string) (AggregateOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	case "sum":
		return Sum, nil
	case "avg":
		return Avg, nil
	case "count":
		return Count, nil
	default:
		return 0, fmt.Errorf("executor: unknown aggregate %q", s)
	}
}

// Aggregator folds rows into per-group accumulators.
type Aggregator interface {
	Merge(t *record.Tuple) error
	Results() ([]*record.Tuple, error)
	Schema() *record.Schema
}

type accumulator struct {
	group    record.Value
	count    int64 // rows merged, used by COUNT
	n        int64 // non-null aggregated values, used by AVG
	sum      int64
	min, max int64
}

// AggregateSpec describes one aggregate computation over a child schema.
// GroupType and GroupName are ignored when GroupField is NoGrouping.
type AggregateSpec struct {
	GroupField int
	GroupType  record.FieldType
	GroupName  string
	AggField   int
	AggName    string
	Op         AggregateOp
}

// groupAggregator computes one AggregateOp over a field, optionally grouped.
// Groups come out in first-seen order. Accumulators are int64; a result
// outside int32 fails with ErrAggregateOverflow.
type groupAggregator struct {
	spec    AggregateSpec
	numeric bool
	schema  *record.Schema

	groups map[record.Value]*accumulator
	order  []record.Value
}

var _ Aggregator = (*groupAggregator)(nil)

// NewIntAggregator supports every AggregateOp over an INT field.
func NewIntAggregator(spec AggregateSpec) (Aggregator, error) {
	return newGroupAggregator(spec, true)
}

// NewStringAggregator supports only COUNT.
func NewStringAggregator(spec AggregateSpec) (Aggregator, error) {
	if spec.Op != Count {
		return nil, fmt.Errorf("%w: %s over STRING", ErrUnsupportedAggregate, spec.Op)
	}
	return newGroupAggregator(spec, false)
}

func newGroupAggregator(spec AggregateSpec, numeric bool) (*groupAggregator, error) {
	if spec.Op > Count {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAggregate, spec.Op)
	}
	fields := []record.Field{{Type: record.IntType, Name: fmt.Sprintf("%s(%s)", spec.Op, spec.AggName)}}
	if spec.GroupField != NoGrouping {
		fields = append([]record.Field{{Type: spec.GroupType, Name: spec.GroupName}}, fields...)
	}
	schema, err := record.FromFields(fields...)
	if err != nil {
		return nil, err
	}
	return &groupAggregator{
		spec:    spec,
		numeric: numeric,
		schema:  schema,
		groups:  make(map[record.Value]*accumulator),
	}, nil
}

func (a *groupAggregator) Schema() *record.Schema { return a.schema }

func (a *groupAggregator) Merge(t *record.Tuple) error {
	var key record.Value
	if a.spec.GroupField != NoGrouping {
		v, err := t.Value(a.spec.GroupField)
		if err != nil {
			return err
		}
		key = v
	}
	acc, ok := a.groups[key]
	if !ok {
		acc = &accumulator{group: key}
		a.groups[key] = acc
		a.order = append(a.order, key)
	}
	acc.count++

	if !a.numeric {
		return nil
	}
	v, err := t.Value(a.spec.AggField)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	iv, ok := v.(record.Int)
	if !ok {
		return fmt.Errorf("%w: aggregate field is %T", record.ErrSchemaMismatch, v)
	}
	x := int64(iv)
	if acc.n == 0 {
		acc.min, acc.max = x, x
	} else {
		if x < acc.min {
			acc.min = x
		}
		if x > acc.max {
			acc.max = x
		}
	}
	acc.sum += x
	acc.n++
	return nil
}

// result is the finalized aggregate of one group; ok is false when the
// group saw no non-null values for MIN/MAX/SUM/AVG.
func (a *groupAggregator) result(acc *accumulator) (int64, bool) {
	switch a.spec.Op {
	case Count:
		return acc.count, true
	case Min:
		return acc.min, acc.n > 0
	case Max:
		return acc.max, acc.n > 0
	case Sum:
		return acc.sum, acc.n > 0
	case Avg:
		if acc.n == 0 {
			return 0, false
		}
		return acc.sum / acc.n, true
	}
	return 0, false
}

func (a *groupAggregator) Results() ([]*record.Tuple, error) {
	if a.spec.GroupField == NoGrouping && len(a.order) == 0 {
		if a.spec.Op != Count {
			return nil, nil
		}
		t, err := record.NewTupleWith(a.schema, record.Int(0))
		if err != nil {
			return nil, err
		}
		return []*record.Tuple{t}, nil
	}

	out := make([]*record.Tuple, 0, len(a.order))
	for _, key := range a.order {
		acc := a.groups[key]
		t := record.NewTuple(a.schema)
		aggIdx := 0
		if a.spec.GroupField != NoGrouping {
			if err := t.Set(0, acc.group); err != nil {
				return nil, err
			}
			aggIdx = 1
		}
		if v, ok := a.result(acc); ok {
			if v > math.MaxInt32 || v < math.MinInt32 {
				return nil, fmt.Errorf("%w: %s = %d", ErrAggregateOverflow, a.spec.Op, v)
			}
			if err := t.Set(aggIdx, record.Int(v)); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	return out, nil
}
