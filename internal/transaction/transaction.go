package transaction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAborted is reserved for a lock manager that kills a transaction.
	ErrAborted = errors.New("transaction: aborted")
	ErrUnknown = errors.New("transaction: unknown or already completed")
)

// ID is the opaque token threaded through every storage call.
type ID uuid.UUID

// None is used by maintenance paths that run outside any transaction.
var None ID

func NewID() ID { return ID(uuid.New()) }

func (id ID) IsZero() bool { return id == None }

func (id ID) String() string {
	if id.IsZero() {
		return "none"
	}
	return uuid.UUID(id).String()
}

type Permissions uint8

const (
	ReadOnly Permissions = iota
	ReadWrite
)

func (p Permissions) String() string {
	if p == ReadWrite {
		return "READ_WRITE"
	}
	return "READ_ONLY"
}

// CompletionFunc is called once per transaction, after it leaves the registry.
type CompletionFunc func(tx ID, commit bool) error

// Registry tracks the transactions that have begun but not completed.
type Registry struct {
	mu         sync.Mutex
	active     map[ID]time.Time
	onComplete CompletionFunc
}

func NewRegistry(onComplete CompletionFunc) *Registry {
	return &Registry{
		active:     make(map[ID]time.Time),
		onComplete: onComplete,
	}
}

func (r *Registry) Begin() ID {
	id := NewID()
	r.mu.Lock()
	r.active[id] = time.Now()
	r.mu.Unlock()
	return id
}

func (r *Registry) IsActive(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}

func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}

func (r *Registry) Commit(id ID) error { return r.complete(id, true) }

func (r *Registry) Abort(id ID) error { return r.complete(id, false) }

func (r *Registry) complete(id ID, commit bool) error {
	r.mu.Lock()
	_, ok := r.active[id]
	delete(r.active, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, id)
	}
	if r.onComplete == nil {
		return nil
	}
	return r.onComplete(id, commit)
}
