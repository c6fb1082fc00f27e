package bufferpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/logger"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

const DefaultCapacity = 50

var ErrNoEvictablePage = errors.New("bufferpool: no evictable page (pool exhausted)")

type frame struct {
	pid  common.PageID
	page *heap.HeapPage
}

// Stats are cumulative counters since the pool was created.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	WriteBacks uint64
}

type Option func(*Pool)

func WithReplacer(r Replacer) Option {
	return func(p *Pool) { p.replacer = r }
}

func WithLogger(l *logger.Logger) Option {
	return func(p *Pool) { p.log = l }
}

var _ heap.PageFetcher = (*Pool)(nil)

// Pool is the only cache of heap pages. All state changes happen under mu,
// so a lookup-or-load, a tuple mutation, an eviction or a flush is atomic
// with respect to the others.
type Pool struct {
	files FileResolver
	log   *logger.Logger

	mu        sync.Mutex
	frames    []*frame              // len == capacity, nil == free slot
	pageTable map[common.PageID]int // PageID -> frame index
	replacer  Replacer

	hits, misses, evictions, writeBacks atomic.Uint64
}

func NewPool(files FileResolver, capacity int, opts ...Option) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	p := &Pool{
		files:     files,
		log:       logger.NewNop(),
		frames:    make([]*frame, capacity),
		pageTable: make(map[common.PageID]int),
		replacer:  newLRUAdapter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("bufferpool")
	return p
}

func (p *Pool) Capacity() int { return len(p.frames) }

// Size is the number of resident pages.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pageTable)
}

func (p *Pool) Stats() Stats {
	return Stats{
		Hits:       p.hits.Load(),
		Misses:     p.misses.Load(),
		Evictions:  p.evictions.Load(),
		WriteBacks: p.writeBacks.Load(),
	}
}

// GetPage returns the cached page, loading it (and evicting another page
// when full) on a miss. perm is accepted for a future lock manager.
func (p *Pool) GetPage(tx transaction.ID, pid common.PageID, perm transaction.Permissions) (*heap.HeapPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getPageLocked(tx, pid, perm)
}

func (p *Pool) getPageLocked(_ transaction.ID, pid common.PageID, _ transaction.Permissions) (*heap.HeapPage, error) {
	// 1) HIT
	if idx, ok := p.pageTable[pid]; ok {
		p.replacer.RecordAccess(idx)
		p.hits.Add(1)
		return p.frames[idx].page, nil
	}

	// 2) MISS: load first so a failed read leaves the cache untouched
	hf, err := p.files.DatabaseFile(pid.Table)
	if err != nil {
		return nil, err
	}
	page, err := hf.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	p.misses.Add(1)

	if err := p.installLocked(page); err != nil {
		return nil, err
	}
	return page, nil
}

// installLocked caches page in a free frame, evicting when there is none.
func (p *Pool) installLocked(page *heap.HeapPage) error {
	idx := -1
	for i, f := range p.frames {
		if f == nil {
			idx = i
			break
		}
	}
	if idx < 0 {
		var err error
		if idx, err = p.evictLocked(); err != nil {
			return err
		}
	}

	p.frames[idx] = &frame{pid: page.ID(), page: page}
	p.pageTable[page.ID()] = idx
	p.replacer.RecordAccess(idx)
	p.replacer.SetEvictable(idx, true)
	return nil
}

// EvictPage writes back (if dirty) and drops the least recently used page.
func (p *Pool) EvictPage() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.evictLocked()
	return err
}

func (p *Pool) evictLocked() (int, error) {
	idx, ok := p.replacer.Victim()
	if !ok {
		return -1, ErrNoEvictablePage
	}
	victim := p.frames[idx]

	_, dirty := victim.page.IsDirty()
	if err := p.flushFrame(victim); err != nil {
		// the victim stays resident, dirty, with its age untouched
		return -1, err
	}

	p.replacer.Remove(idx)
	delete(p.pageTable, victim.pid)
	p.frames[idx] = nil
	p.evictions.Add(1)
	p.log.Debug("evicted page", "page", victim.pid.String(), "dirty", dirty)
	return idx, nil
}

// flushFrame writes a dirty page through its heap file and clears the flag.
// It only touches the frame's own page, so distinct frames can be flushed
// concurrently while mu is held by the caller.
func (p *Pool) flushFrame(f *frame) error {
	tx, dirty := f.page.IsDirty()
	if !dirty {
		return nil
	}
	hf, err := p.files.DatabaseFile(f.pid.Table)
	if err != nil {
		return err
	}
	if err := hf.WritePage(f.page); err != nil {
		return fmt.Errorf("bufferpool: write back %s: %w", f.pid, err)
	}
	f.page.MarkDirty(false, transaction.None)
	p.writeBacks.Add(1)
	p.log.Debug("wrote back page", "page", f.pid.String(), "tx", tx.String())
	return nil
}

// PageTuples decodes the tuples of pid without releasing the pool lock
// between the fetch and the decode.
func (p *Pool) PageTuples(tx transaction.ID, pid common.PageID) ([]*record.Tuple, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	page, err := p.getPageLocked(tx, pid, transaction.ReadOnly)
	if err != nil {
		return nil, err
	}
	return page.Tuples()
}

// lockedFetcher lets a HeapFile fetch pages while the pool lock is held
// for the whole tuple operation.
type lockedFetcher struct{ p *Pool }

func (lf lockedFetcher) GetPage(tx transaction.ID, pid common.PageID, perm transaction.Permissions) (*heap.HeapPage, error) {
	return lf.p.getPageLocked(tx, pid, perm)
}

// InsertTuple adds t to table tableID and marks the modified page dirty.
func (p *Pool) InsertTuple(tx transaction.ID, tableID common.TableID, t *record.Tuple) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	hf, err := p.files.DatabaseFile(tableID)
	if err != nil {
		return err
	}
	pages, err := hf.InsertTuple(tx, t, lockedFetcher{p})
	if err != nil {
		return err
	}
	return p.markDirtyLocked(tx, pages)
}

// DeleteTuple removes t from the table its locator points into.
func (p *Pool) DeleteTuple(tx transaction.ID, t *record.Tuple) error {
	loc, ok := t.Locator()
	if !ok {
		return fmt.Errorf("%w: tuple has no locator", common.ErrInvalidLocation)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	hf, err := p.files.DatabaseFile(loc.Page.Table)
	if err != nil {
		return err
	}
	pages, err := hf.DeleteTuple(tx, t, lockedFetcher{p})
	if err != nil {
		return err
	}
	return p.markDirtyLocked(tx, pages)
}

func (p *Pool) markDirtyLocked(tx transaction.ID, pages []*heap.HeapPage) error {
	for _, pg := range pages {
		pg.MarkDirty(true, tx)
		if idx, ok := p.pageTable[pg.ID()]; ok {
			p.frames[idx].page = pg
			continue
		}
		// the page left the cache during the operation; cache the dirty copy again
		if err := p.installLocked(pg); err != nil {
			return err
		}
	}
	return nil
}

// FlushPage writes one cached page back if it is dirty.
func (p *Pool) FlushPage(pid common.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx, ok := p.pageTable[pid]
	if !ok {
		return nil
	}
	return p.flushFrame(p.frames[idx])
}

// FlushAllPages writes back every dirty page. Each table file is flushed
// by its own goroutine.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushWhereLocked(func(*frame) bool { return true })
}

// FlushPages writes back every page last dirtied by tx.
func (p *Pool) FlushPages(tx transaction.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushWhereLocked(func(f *frame) bool {
		by, dirty := f.page.IsDirty()
		return dirty && by == tx
	})
}

func (p *Pool) flushWhereLocked(match func(*frame) bool) error {
	byTable := make(map[common.TableID][]*frame)
	for _, f := range p.frames {
		if f == nil || !match(f) {
			continue
		}
		if _, dirty := f.page.IsDirty(); !dirty {
			continue
		}
		byTable[f.pid.Table] = append(byTable[f.pid.Table], f)
	}

	var g errgroup.Group
	for _, frames := range byTable {
		frames := frames
		g.Go(func() error {
			for _, f := range frames {
				if err := p.flushFrame(f); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// DiscardPage drops a page without writing it back.
func (p *Pool) DiscardPage(pid common.PageID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discardLocked(pid)
}

func (p *Pool) discardLocked(pid common.PageID) {
	idx, ok := p.pageTable[pid]
	if !ok {
		return
	}
	delete(p.pageTable, pid)
	p.frames[idx] = nil
	p.replacer.Remove(idx)
	p.log.Debug("discarded page", "page", pid.String())
}

// TransactionComplete flushes tx's dirty pages on commit and discards them
// on abort, so the next read sees the on-disk state.
func (p *Pool) TransactionComplete(tx transaction.ID, commit bool) error {
	if commit {
		return p.FlushPages(tx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.frames {
		if f == nil {
			continue
		}
		if by, dirty := f.page.IsDirty(); dirty && by == tx {
			p.discardLocked(f.pid)
		}
	}
	return nil
}

// ReleasePage is a hook for a lock manager; pages are not locked.
func (p *Pool) ReleasePage(transaction.ID, common.PageID) {}

// HoldsLock always reports false: there is no lock manager.
func (p *Pool) HoldsLock(transaction.ID, common.PageID) bool { return false }
