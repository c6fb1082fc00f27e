package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tuannm99/novaheap/internal"
	"github.com/tuannm99/novaheap/internal/bufferpool"
	"github.com/tuannm99/novaheap/internal/catalog"
	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/logger"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

var (
	ErrDatabaseClosed   = errors.New("novaheap: database is closed")
	ErrInvalidTableName = errors.New("novaheap: invalid table name")
)

const tableFileExt = ".dat"

type options struct {
	log        *logger.Logger
	poolPages  int
	schemaFile string
}

type Option func(*options)

func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithPoolPages sets the buffer pool capacity.
func WithPoolPages(n int) Option {
	return func(o *options) { o.poolPages = n }
}

// WithSchemaFile overrides the schema file location; relative paths are
// resolved against the data directory.
func WithSchemaFile(path string) Option {
	return func(o *options) { o.schemaFile = path }
}

// Database is the context every operation runs against: it owns the
// catalog, the buffer pool and the registry of active transactions.
type Database struct {
	dataDir    string
	schemaPath string
	log        *logger.Logger

	catalog *catalog.Catalog
	pool    *bufferpool.Pool
	txns    *transaction.Registry

	mu     sync.Mutex
	closed bool
}

// Open creates dataDir if needed and registers every table listed in its
// schema file.
func Open(dataDir string, opts ...Option) (*Database, error) {
	o := options{
		log:        logger.NewNop(),
		poolPages:  bufferpool.DefaultCapacity,
		schemaFile: internal.DefaultSchema,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Join(dataDir, "tables"), common.FileMode0755); err != nil {
		return nil, common.IOError("create data dir", err)
	}
	schemaPath := o.schemaFile
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(dataDir, schemaPath)
	}

	cat := catalog.New()
	if err := cat.LoadSchema(schemaPath); err != nil {
		_ = cat.Close()
		return nil, err
	}

	log := o.log.Named("engine")
	pool := bufferpool.NewPool(cat, o.poolPages, bufferpool.WithLogger(o.log))
	db := &Database{
		dataDir:    dataDir,
		schemaPath: schemaPath,
		log:        log,
		catalog:    cat,
		pool:       pool,
		txns:       transaction.NewRegistry(pool.TransactionComplete),
	}
	log.Info("opened database",
		"data_dir", dataDir,
		"tables", len(cat.TableIDs()),
		"pool_pages", pool.Capacity(),
	)
	return db, nil
}

// OpenConfig opens the database described by cfg.
func OpenConfig(cfg *internal.Config, log *logger.Logger) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return Open(cfg.Storage.DataDir,
		WithLogger(log),
		WithPoolPages(cfg.Storage.PoolPages),
		WithSchemaFile(cfg.Storage.SchemaFile),
	)
}

func (db *Database) DataDir() string { return db.dataDir }

func (db *Database) SchemaPath() string { return db.schemaPath }

func (db *Database) Catalog() *catalog.Catalog { return db.catalog }

func (db *Database) Pool() *bufferpool.Pool { return db.pool }

func (db *Database) checkOpen() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}
	return nil
}

func (db *Database) tablePath(name string) string {
	return filepath.Join(db.dataDir, "tables", name+tableFileExt)
}

func validTableName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return false
	}
	return filepath.IsLocal(name)
}

// CreateTable creates the heap file for a new table, registers it and
// rewrites the schema file.
func (db *Database) CreateTable(name string, schema *record.Schema) (common.TableID, error) {
	if err := db.checkOpen(); err != nil {
		return 0, err
	}
	if !validTableName(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	if db.catalog.HasTable(name) {
		return 0, fmt.Errorf("%w: %s", catalog.ErrTableExists, name)
	}

	hf, err := heap.OpenHeapFile(db.tablePath(name), schema)
	if err != nil {
		return 0, err
	}
	if old := db.catalog.AddTable(name, hf); old != nil {
		_ = old.Close()
	}
	if err := db.catalog.SaveSchema(db.schemaPath); err != nil {
		return 0, fmt.Errorf("save schema: %w", err)
	}
	db.log.Info("created table", "table", name, "id", hf.ID(), "schema", schema.String())
	return hf.ID(), nil
}

func (db *Database) TableID(name string) (common.TableID, error) {
	return db.catalog.TableID(name)
}

func (db *Database) TableName(id common.TableID) (string, error) {
	return db.catalog.TableName(id)
}

func (db *Database) DatabaseFile(id common.TableID) (*heap.HeapFile, error) {
	return db.catalog.DatabaseFile(id)
}

func (db *Database) GetPage(tx transaction.ID, pid common.PageID, perm transaction.Permissions) (*heap.HeapPage, error) {
	return db.pool.GetPage(tx, pid, perm)
}

func (db *Database) PageTuples(tx transaction.ID, pid common.PageID) ([]*record.Tuple, error) {
	return db.pool.PageTuples(tx, pid)
}

func (db *Database) InsertTuple(tx transaction.ID, tableID common.TableID, t *record.Tuple) error {
	return db.pool.InsertTuple(tx, tableID, t)
}

func (db *Database) DeleteTuple(tx transaction.ID, t *record.Tuple) error {
	return db.pool.DeleteTuple(tx, t)
}

// Begin starts a transaction. Its dirty pages are flushed on Commit and
// dropped from the pool on Abort.
func (db *Database) Begin() (transaction.ID, error) {
	if err := db.checkOpen(); err != nil {
		return transaction.None, err
	}
	return db.txns.Begin(), nil
}

func (db *Database) Commit(tx transaction.ID) error { return db.txns.Commit(tx) }

func (db *Database) Abort(tx transaction.ID) error { return db.txns.Abort(tx) }

// Run executes fn inside a new transaction, committing when fn succeeds
// and aborting otherwise.
func (db *Database) Run(fn func(tx transaction.ID) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, db.Abort(tx))
	}
	return db.Commit(tx)
}

func (db *Database) FlushAll() error {
	if err := db.checkOpen(); err != nil {
		return err
	}
	return db.pool.FlushAllPages()
}

// Close flushes every dirty page, saves the schema file and closes the
// table files. Transactions still active are not aborted: their pages are
// written like any other dirty page.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return ErrDatabaseClosed
	}
	db.closed = true
	db.mu.Unlock()

	if n := db.txns.ActiveCount(); n > 0 {
		db.log.Warn("closing with active transactions", "active", n)
	}
	err := db.pool.FlushAllPages()
	if len(db.catalog.TableIDs()) > 0 {
		err = errors.Join(err, db.catalog.SaveSchema(db.schemaPath))
	}
	err = errors.Join(err, db.catalog.Close())
	db.log.Info("closed database", "data_dir", db.dataDir, "stats", db.pool.Stats())
	return err
}
