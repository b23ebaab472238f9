package containerof

import (
	cerrors "github.com/cockroachdb/errors"
)

// ErrReleased is the cause of the panic raised when an Owned, Borrow or MutBorrow is used
// after it has been consumed or released.
var ErrReleased error = cerrors.New("handle was already released")

// ErrBorrowConflict is the cause of the panic raised when a borrow would violate the
// shared/exclusive rules of the borrow table.
var ErrBorrowConflict error = cerrors.New("conflicting borrow of the same memory")

// ErrUnreleased is reported when an Owned is garbage collected without being consumed.
var ErrUnreleased error = cerrors.New("ownership was dropped without being released")

func contractViolation(cause error, format string, args ...any) error {
	return cerrors.WithAssertionFailure(cerrors.Wrapf(cause, format, args...))
}
