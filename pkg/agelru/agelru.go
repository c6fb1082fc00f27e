package agelru

// AgeLRU implements age-counter LRU replacement over arbitrary keys.
//
// Every Touch adds one to the age of every other tracked key and resets the
// touched key to zero, so a key's age is the number of accesses to other
// keys since it was last used. Evict picks the evictable key with the
// LARGEST age, i.e. the least recently used one.
type AgeLRU[K comparable] struct {
	entries map[K]*entry
	size    int // number of evictable keys
}

type entry struct {
	age       uint64
	evictable bool
}

func New[K comparable]() *AgeLRU[K] {
	return &AgeLRU[K]{entries: make(map[K]*entry)}
}

// Touch marks key as just accessed. An unknown key starts tracking, not evictable.
func (a *AgeLRU[K]) Touch(key K) {
	for k, e := range a.entries {
		if k != key {
			e.age++
		}
	}
	e, ok := a.entries[key]
	if !ok {
		e = &entry{}
		a.entries[key] = e
	}
	e.age = 0
}

// SetEvictable marks whether key may be chosen by Evict. Unknown keys are ignored.
func (a *AgeLRU[K]) SetEvictable(key K, evictable bool) {
	e, ok := a.entries[key]
	if !ok || e.evictable == evictable {
		return
	}
	e.evictable = evictable
	if evictable {
		a.size++
	} else {
		a.size--
	}
}

// Victim returns the oldest evictable key without removing it or changing
// any age.
func (a *AgeLRU[K]) Victim() (K, bool) {
	var (
		victim K
		oldest *entry
	)
	for k, e := range a.entries {
		if !e.evictable {
			continue
		}
		if oldest == nil || e.age > oldest.age {
			victim, oldest = k, e
		}
	}
	return victim, oldest != nil
}

// Evict returns the oldest evictable key and stops tracking it.
func (a *AgeLRU[K]) Evict() (K, bool) {
	victim, ok := a.Victim()
	if !ok {
		return victim, false
	}
	a.Remove(victim)
	return victim, true
}

// Remove stops tracking key.
func (a *AgeLRU[K]) Remove(key K) {
	e, ok := a.entries[key]
	if !ok {
		return
	}
	if e.evictable {
		a.size--
	}
	delete(a.entries, key)
}

// Age returns key's current age and whether it is tracked.
func (a *AgeLRU[K]) Age(key K) (uint64, bool) {
	e, ok := a.entries[key]
	if !ok {
		return 0, false
	}
	return e.age, true
}

// Size is the number of evictable keys.
func (a *AgeLRU[K]) Size() int { return a.size }

// Len is the number of tracked keys.
func (a *AgeLRU[K]) Len() int { return len(a.entries) }
