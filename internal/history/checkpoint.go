package history

import "errors"

// Errors returned when a checkpoint can no longer be reached.
var (
	// ErrCheckpointEvicted indicates a checkpoint refers to entries that
	// were dropped by retention or Clear.
	ErrCheckpointEvicted = errors.New("checkpoint no longer in history")

	// ErrCheckpointBranched indicates the entries leading to a checkpoint
	// were discarded when a new operation replaced the redo tail.
	ErrCheckpointBranched = errors.New("checkpoint on a discarded branch")
)

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	position int // absolute position, counting evicted entries
	branches int // number of discarded tails when the checkpoint was taken
}

// CreateCheckpoint records the current history position.
func (h *History[S]) CreateCheckpoint() Checkpoint {
	return Checkpoint{position: h.evicted + h.cursor, branches: len(h.branches)}
}

// Since returns the number of undo steps between the cursor and cp.
// Negative values mean cp lies in the redo tail.
func (h *History[S]) Since(cp Checkpoint) int {
	return h.evicted + h.cursor - cp.position
}

func (h *History[S]) relative(cp Checkpoint) (int, error) {
	for _, at := range h.branches[min(cp.branches, len(h.branches)):] {
		if at < cp.position {
			return 0, ErrCheckpointBranched
		}
	}
	pos := cp.position - h.evicted
	if pos < 0 {
		return 0, ErrCheckpointEvicted
	}
	return pos, nil
}

// UndoToCheckpoint undoes every operation applied since the checkpoint.
// It stops at the first failing undo.
func (h *History[S]) UndoToCheckpoint(cp Checkpoint, state S) error {
	pos, err := h.relative(cp)
	if err != nil {
		return err
	}
	for h.cursor > pos {
		if err := h.Undo(state); err != nil {
			return err
		}
	}
	return nil
}

// RedoToCheckpoint redoes operations up to the checkpoint position, as far
// as the redo tail allows.
func (h *History[S]) RedoToCheckpoint(cp Checkpoint, state S) error {
	pos, err := h.relative(cp)
	if err != nil {
		return err
	}
	for h.cursor < pos && h.CanRedo() {
		if err := h.Redo(state); err != nil {
			return err
		}
	}
	return nil
}
