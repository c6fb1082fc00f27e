// Package novaheap is the top-level facade for the novaheap storage engine.
package novaheap

import (
	"github.com/tuannm99/novaheap/internal/engine"
	"github.com/tuannm99/novaheap/internal/executor"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/transaction"
)

type (
	Database = engine.Database
	Option   = engine.Option

	Schema = record.Schema
	Tuple  = record.Tuple
	Value  = record.Value

	TxID = transaction.ID

	Operator = executor.Operator
	Result   = executor.Result
)

var (
	WithLogger    = engine.WithLogger
	WithPoolPages = engine.WithPoolPages
)

// Open opens (or creates) the database stored under dataDir.
func Open(dataDir string, opts ...Option) (*Database, error) {
	return engine.Open(dataDir, opts...)
}
