package util

import (
	"errors"
	"os"
)

// CloseFile closes f and folds a close failure into *errp,
// keeping an earlier error if one is already there.
func CloseFile(f *os.File, errp *error) {
	if f == nil {
		return
	}
	if err := f.Close(); err != nil && errp != nil {
		*errp = errors.Join(*errp, err)
	}
}
