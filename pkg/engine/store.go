// Package engine defines the core storage engine for MediaID records.
package engine

import (
	"errors"
	"fmt"
)

// ErrStoreClosed is returned when a store is used after Close.
var ErrStoreClosed = errors.New("store is closed")

// StorageError reports that a record could not be persisted or read back.
// Handlers surface it as a server error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is, or wraps, a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
