package history

import "time"

// Op is the apply contract between the history and a state type.
type Op[S any] interface {
	// Apply mutates state. forward=false reverses a previous forward
	// application.
	Apply(state S, forward bool) error

	// Description returns a human-readable summary for undo/redo menus.
	Description() string
}

// OperationInfo provides read-only info about a recorded operation.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the operation was first applied
}
