package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
)

var (
	ErrNoSuchTable = errors.New("catalog: no such table")
	ErrTableExists = errors.New("catalog: table already exists")
)

type entry struct {
	name string
	file *heap.HeapFile
}

// Catalog maps table names and ids to their heap files and schemas.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[common.TableID]*entry
	byName map[string]common.TableID
}

func New() *Catalog {
	return &Catalog{
		byID:   make(map[common.TableID]*entry),
		byName: make(map[string]common.TableID),
	}
}

// AddTable registers file under name. An entry with the same name or the
// same table id is replaced; the replaced file is returned so the caller
// can close it.
func (c *Catalog) AddTable(name string, file *heap.HeapFile) *heap.HeapFile {
	c.mu.Lock()
	defer c.mu.Unlock()

	var replaced *heap.HeapFile
	if id, ok := c.byName[name]; ok {
		replaced = c.byID[id].file
		delete(c.byID, id)
		delete(c.byName, name)
	}
	if old, ok := c.byID[file.ID()]; ok {
		replaced = old.file
		delete(c.byName, old.name)
		delete(c.byID, file.ID())
	}
	if replaced == file {
		replaced = nil
	}

	c.byID[file.ID()] = &entry{name: name, file: file}
	c.byName[name] = file.ID()
	return replaced
}

func (c *Catalog) HasTable(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byName[name]
	return ok
}

func (c *Catalog) TableID(name string) (common.TableID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNoSuchTable, name)
	}
	return id, nil
}

func (c *Catalog) lookup(id common.TableID) (*entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchTable, id)
	}
	return e, nil
}

func (c *Catalog) TableName(id common.TableID) (string, error) {
	e, err := c.lookup(id)
	if err != nil {
		return "", err
	}
	return e.name, nil
}

// DatabaseFile returns the heap file for id.
func (c *Catalog) DatabaseFile(id common.TableID) (*heap.HeapFile, error) {
	e, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.file, nil
}

func (c *Catalog) Schema(id common.TableID) (*record.Schema, error) {
	e, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.file.Schema(), nil
}

// TableIDs lists every table id ordered by table name.
func (c *Catalog) TableIDs() []common.TableID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)

	ids := make([]common.TableID, len(names))
	for i, n := range names {
		ids[i] = c.byName[n]
	}
	return ids
}

// Clear forgets every table without closing its file.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[common.TableID]*entry)
	c.byName = make(map[string]common.TableID)
}

// Close closes every registered file and clears the catalog.
func (c *Catalog) Close() error {
	c.mu.Lock()
	var errs []error
	for _, e := range c.byID {
		errs = append(errs, e.file.Close())
	}
	c.mu.Unlock()

	c.Clear()
	return errors.Join(errs...)
}
