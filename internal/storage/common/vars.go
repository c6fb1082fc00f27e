package common

import (
	"errors"
	"fmt"
)

const (
	OneB  = 1
	OneKB = 1024

	// 4KB page, fixed by the heap file format
	PageSize = OneKB * 4
)

const (
	FileMode0644 = 0o644
	FileMode0664 = 0o664
	FileMode0755 = 0o755
)

var (
	ErrInvalidLocation = errors.New("storage: invalid page or record location")
	ErrStorageIO       = errors.New("storage: I/O error")
	ErrPageFull        = errors.New("storage: page has no free slot")

	// ErrIteratorMisuse is the parent of every iterator contract violation.
	ErrIteratorMisuse = errors.New("iterator: misuse")
	ErrNotOpen        = fmt.Errorf("%w: iterator is not open", ErrIteratorMisuse)
	ErrNoSuchElement  = fmt.Errorf("%w: no more tuples", ErrIteratorMisuse)
)

// IOError wraps err so that errors.Is(err, ErrStorageIO) holds while the
// original cause stays reachable.
func IOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageIO, op, err)
}
