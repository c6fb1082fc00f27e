package executor

import (
	"errors"

	"github.com/tuannm99/novaheap/internal/record"
)

// Result is the materialized output of an operator tree.
type Result struct {
	Columns []string
	Rows    [][]record.Value

	// For Insert/Delete:
	AffectedRows int64
}

// Collect opens op, drains it and closes it. When op is an Insert or
// Delete the count row is reported as AffectedRows.
func Collect(op Operator) (res *Result, err error) {
	if err := op.Open(); err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, op.Close())
		if err != nil {
			res = nil
		}
	}()

	res = &Result{}
	for _, f := range op.Schema().Fields() {
		res.Columns = append(res.Columns, f.Name)
	}
	err = drain(op, func(t *record.Tuple) error {
		res.Rows = append(res.Rows, t.Values())
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch op.(type) {
	case *Insert, *Delete:
		if len(res.Rows) == 1 {
			if n, ok := res.Rows[0][0].(record.Int); ok {
				res.AffectedRows = int64(n)
			}
		}
	}
	return res, nil
}
