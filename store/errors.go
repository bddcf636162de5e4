package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an update, delete or move whose target is absent.
	// The state is left unchanged.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrInvalid        = errors.New("invalid intent")
	ErrNoActiveFolder = errors.New("no active folder")
	ErrPersistence    = errors.New("persistence failure")
)

// PersistenceError is returned when a slice could not be written. The
// transition that produced it is not committed.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
