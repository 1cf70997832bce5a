package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("ledger storage failure")

	// ErrEntryNotProvisioned means an update touched no row: the date was
	// never provisioned.
	ErrEntryNotProvisioned = errors.New("ledger entry not provisioned")
)

// StorageError wraps a failure of the backing engine.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError returns nil when err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
