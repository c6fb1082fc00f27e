package bufferpool

import "github.com/tuannm99/novaheap/pkg/agelru"

type lruAdapter struct {
	a *agelru.AgeLRU[int]
}

func newLRUAdapter() Replacer {
	return &lruAdapter{a: agelru.New[int]()}
}

func (l *lruAdapter) RecordAccess(frameID int) {
	l.a.Touch(frameID)
}

func (l *lruAdapter) SetEvictable(frameID int, e bool) {
	l.a.SetEvictable(frameID, e)
}

func (l *lruAdapter) Victim() (int, bool) {
	return l.a.Victim()
}

func (l *lruAdapter) Remove(frameID int) {
	l.a.Remove(frameID)
}

func (l *lruAdapter) Size() int {
	return l.a.Size()
}
