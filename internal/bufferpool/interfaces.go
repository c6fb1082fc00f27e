package bufferpool

import (
	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/storage/common"
)

// Replacer decides which frame to give up when the pool is full.
// Frames are identified by their index in [0..capacity). Victim only
// proposes a frame; the pool calls Remove once the frame is really freed.
type Replacer interface {
	RecordAccess(frameID int)
	SetEvictable(frameID int, evictable bool)
	Victim() (frameID int, ok bool)
	Remove(frameID int)
	Size() int
}

// FileResolver maps a table id to the heap file that owns its pages.
// The catalog implements it.
type FileResolver interface {
	DatabaseFile(id common.TableID) (*heap.HeapFile, error)
}
