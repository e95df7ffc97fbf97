// Package history provides linear undo/redo over any state type.
//
// The history keeps a single chronological sequence of operations and a
// cursor marking the next redo slot:
//
//	h := history.New[*overlay.Overlay](1000) // keep at most 1000 entries
//
//	h.ApplyNew(op, state) // apply forward and record
//	h.Undo(state)         // apply the previous entry backward
//	h.Redo(state)         // apply the next entry forward
//
// # Operations
//
// Anything implementing Op[S] can be recorded. The history never inspects
// an operation beyond calling Apply and Description, so it can be tested
// against a fake state and reused for any document shape.
//
// # Branching and retention
//
// Applying a new operation while the cursor is behind the end discards the
// undone tail; it can never be redone. When the sequence grows past the
// retention cap the oldest entries are dropped and the cursor shifts with
// them, so the earliest reachable state is the oldest retained one.
//
// # Failure
//
// A failed ApplyNew, Undo, or Redo leaves the sequence and cursor exactly
// as they were before the call.
//
// History is not safe for concurrent use. Each document session owns one.
package history
