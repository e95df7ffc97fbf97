package session

import (
	"errors"
	"fmt"

	"github.com/dshills/dbcedit/internal/edit"
	"github.com/dshills/dbcedit/internal/history"
)

// Session errors.
var (
	// ErrMessageNotFound indicates an operation targets a message that is
	// not visible in the overlay.
	ErrMessageNotFound = errors.New("message not found")

	// ErrSignalNotFound indicates an operation targets an unknown signal.
	ErrSignalNotFound = errors.New("signal not found")

	// ErrDuplicateMessage indicates a message identifier is already in use.
	ErrDuplicateMessage = errors.New("message id already in use")

	// ErrGroupActive indicates undo or redo was attempted inside a transaction.
	ErrGroupActive = errors.New("transaction in progress")

	// ErrUnknownOperation indicates an operation type the binding does not handle.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidOperation is re-exported so callers need only this package.
	ErrInvalidOperation = edit.ErrInvalidOperation

	// ErrNothingToUndo indicates the cursor is at the start of history.
	ErrNothingToUndo = history.ErrNothingToUndo

	// ErrNothingToRedo indicates the cursor is at the end of history.
	ErrNothingToRedo = history.ErrNothingToRedo
)

// OperationError represents an error that occurred during a session action.
type OperationError struct {
	Op     string // Action name (e.g., "apply", "undo", "rename")
	Target string // Operation description or message id
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func messageNotFound(id uint32) error {
	return fmt.Errorf("%w: 0x%X", ErrMessageNotFound, id)
}
