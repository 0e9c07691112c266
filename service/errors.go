package service

import (
	"errors"
	"fmt"

	"github.com/Skryldev/entry-catalog/db"
)

var (
	// ErrNotFound is returned when the requested entry does not exist.
	ErrNotFound = errors.New("service: entry not found")

	// ErrStorageTimeout marks a StorageError caused by a store call that ran
	// out of time.
	ErrStorageTimeout = errors.New("service: storage timeout")
)

// InputError reports a malformed request parameter (id, pagination). Message
// is safe to show to clients.
type InputError struct {
	Message string
	Err     error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service: %s: %v", e.Message, e.Err)
	}
	return "service: " + e.Message
}

func (e *InputError) Unwrap() error { return e.Err }

// StorageError wraps a store failure. The cause is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("service: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorageTimeout) match timed-out store calls.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageTimeout && db.IsTimeout(e.Err)
}

// storageErr translates a repository error. A missing row becomes ErrNotFound,
// everything else a StorageError.
func storageErr(op string, err error) error {
	if db.IsNotFound(err) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
