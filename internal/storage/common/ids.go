package common

import "fmt"

// TableID identifies one physical table file for the lifetime of the process.
type TableID uint32

// PageID: table + page number inside that table's file.
type PageID struct {
	Table  TableID
	PageNo int
}

func (p PageID) String() string {
	return fmt.Sprintf("%d:%d", p.Table, p.PageNo)
}

// Offset returns the byte offset of the page inside its table file.
func (p PageID) Offset() int64 {
	return int64(p.PageNo) * PageSize
}

// RecordLocator (page, slot) is the on-disk home of a tuple.
// It is a plain value, two locators are equal iff they point at the same slot.
type RecordLocator struct {
	Page PageID
	Slot int
}

func (r RecordLocator) String() string {
	return fmt.Sprintf("(%s,%d)", r.Page, r.Slot)
}
