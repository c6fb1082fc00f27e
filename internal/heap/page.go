package heap

import (
	"errors"
	"fmt"

	"github.com/tuannm99/novaheap/internal/alias/bx"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

var ErrSchemaTooWide = errors.New("heap: tuple does not fit in a page")

// HeapPage layout (PageSize bytes):
//
//	[bitmap: ceil(N/8) bytes, bit j = slot j occupied, LSB first]
//	[slot 0][slot 1]...[slot N-1]   each slot = schema.Size() bytes
//	[unused tail]
//
// The raw buffer is the only state; tuples are decoded on demand so that
// bytes of free slots and the tail round-trip untouched.
type HeapPage struct {
	id        common.PageID
	schema    *record.Schema
	buf       []byte
	numSlots  int
	headerLen int

	dirty   bool
	dirtier transaction.ID
}

// NumSlotsFor returns the largest N with N*width + ceil(N/8) <= PageSize.
func NumSlotsFor(width int) int {
	if width <= 0 {
		return 0
	}
	n := (common.PageSize * 8) / (width*8 + 1)
	for n > 0 && n*width+bx.BitmapLen(n) > common.PageSize {
		n--
	}
	return n
}

// NewEmptyPageData returns a zeroed page buffer: every slot free.
func NewEmptyPageData() []byte {
	return make([]byte, common.PageSize)
}

// NewHeapPage wraps data, which the page takes ownership of.
func NewHeapPage(id common.PageID, schema *record.Schema, data []byte) (*HeapPage, error) {
	if len(data) != common.PageSize {
		return nil, fmt.Errorf("heap: page buffer must be %d bytes, got %d", common.PageSize, len(data))
	}
	n := NumSlotsFor(schema.Size())
	if n == 0 {
		return nil, fmt.Errorf("%w: width %d", ErrSchemaTooWide, schema.Size())
	}
	return &HeapPage{
		id:        id,
		schema:    schema,
		buf:       data,
		numSlots:  n,
		headerLen: bx.BitmapLen(n),
	}, nil
}

func (p *HeapPage) ID() common.PageID { return p.id }

func (p *HeapPage) Schema() *record.Schema { return p.schema }

func (p *HeapPage) NumSlots() int { return p.numSlots }

func (p *HeapPage) NumEmptySlots() int {
	free := 0
	for i := 0; i < p.numSlots; i++ {
		if !bx.BitSet(p.buf, i) {
			free++
		}
	}
	return free
}

func (p *HeapPage) IsSlotUsed(slot int) bool {
	if slot < 0 || slot >= p.numSlots {
		return false
	}
	return bx.BitSet(p.buf, slot)
}

func (p *HeapPage) slotBytes(slot int) []byte {
	w := p.schema.Size()
	off := p.headerLen + slot*w
	return p.buf[off : off+w]
}

// InsertTuple places t into the lowest free slot and sets its locator.
func (p *HeapPage) InsertTuple(t *record.Tuple) error {
	if !p.schema.Equal(t.Schema()) {
		return fmt.Errorf("%w: page %s holds (%s), tuple is (%s)",
			record.ErrSchemaMismatch, p.id, p.schema, t.Schema())
	}
	slot := -1
	for i := 0; i < p.numSlots; i++ {
		if !bx.BitSet(p.buf, i) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return fmt.Errorf("%w: page %s", common.ErrPageFull, p.id)
	}
	if err := record.EncodeTuple(t, p.slotBytes(slot)); err != nil {
		return err
	}
	bx.SetBit(p.buf, slot, true)
	t.SetLocator(common.RecordLocator{Page: p.id, Slot: slot})
	return nil
}

// DeleteTuple frees the slot t's locator points at. The slot bytes are kept.
func (p *HeapPage) DeleteTuple(t *record.Tuple) error {
	loc, ok := t.Locator()
	if !ok {
		return fmt.Errorf("%w: tuple has no locator", common.ErrInvalidLocation)
	}
	if loc.Page != p.id {
		return fmt.Errorf("%w: tuple %s is not on page %s", common.ErrInvalidLocation, loc, p.id)
	}
	if !p.IsSlotUsed(loc.Slot) {
		return fmt.Errorf("%w: slot %s is empty", common.ErrInvalidLocation, loc)
	}
	bx.SetBit(p.buf, loc.Slot, false)
	return nil
}

// Tuple decodes the tuple in an occupied slot.
func (p *HeapPage) Tuple(slot int) (*record.Tuple, error) {
	if !p.IsSlotUsed(slot) {
		return nil, fmt.Errorf("%w: slot %d on page %s", common.ErrInvalidLocation, slot, p.id)
	}
	t, err := record.DecodeTuple(p.schema, p.slotBytes(slot))
	if err != nil {
		return nil, fmt.Errorf("page %s slot %d: %w", p.id, slot, err)
	}
	t.SetLocator(common.RecordLocator{Page: p.id, Slot: slot})
	return t, nil
}

// Tuples returns every occupied slot's tuple in slot order.
func (p *HeapPage) Tuples() ([]*record.Tuple, error) {
	out := make([]*record.Tuple, 0, p.numSlots)
	for i := 0; i < p.numSlots; i++ {
		if !bx.BitSet(p.buf, i) {
			continue
		}
		t, err := p.Tuple(i)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Data returns a copy of the page bytes, ready to be written to disk.
func (p *HeapPage) Data() []byte {
	out := make([]byte, len(p.buf))
	copy(out, p.buf)
	return out
}

// MarkDirty records tx as the last writer; MarkDirty(false, ...) clears it.
func (p *HeapPage) MarkDirty(dirty bool, tx transaction.ID) {
	p.dirty = dirty
	if dirty {
		p.dirtier = tx
	} else {
		p.dirtier = transaction.None
	}
}

// IsDirty returns the dirtying transaction when the page is dirty.
func (p *HeapPage) IsDirty() (transaction.ID, bool) {
	return p.dirtier, p.dirty
}
