package history

import (
	"errors"
	"slices"
	"time"
)

// DefaultMaxEntries is used when a non-positive retention cap is given.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// entry wraps an operation with metadata.
type entry[S any] struct {
	op        Op[S]
	timestamp time.Time
}

// History manages undo/redo state for one target.
type History[S any] struct {
	entries []entry[S]

	// cursor is the next redo slot, in [0, len(entries)].
	cursor int

	// evicted counts entries dropped from the front over the lifetime of
	// the history; checkpoints use it to stay valid across eviction.
	evicted int

	// branches holds the absolute positions at which a redo tail was
	// discarded, oldest first.
	branches []int

	maxEntries int
	now        func() time.Time
}

// New creates a history retaining at most maxEntries operations.
func New[S any](maxEntries int) *History[S] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History[S]{
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// ApplyNew applies op forward to state and records it.
// Any undone entries after the cursor are discarded first.
func (h *History[S]) ApplyNew(op Op[S], state S) error {
	if err := op.Apply(state, true); err != nil {
		return err
	}
	h.Record(op)
	return nil
}

// Record appends an operation whose forward effect has already been applied
// by the caller. Any undone entries after the cursor are discarded first.
func (h *History[S]) Record(op Op[S]) {
	h.truncate(h.cursor)

	h.entries = append(h.entries, entry[S]{op: op, timestamp: h.now()})
	h.cursor = len(h.entries)

	if len(h.entries) > h.maxEntries {
		h.evictFront(len(h.entries) - h.maxEntries)
	}
}

// truncate discards entries from n on and records the branch point.
func (h *History[S]) truncate(n int) {
	if n >= len(h.entries) {
		return
	}
	clear(h.entries[n:])
	h.entries = h.entries[:n]
	h.branches = append(h.branches, h.evicted+n)
}

// evictFront drops the n oldest entries and shifts the cursor with them.
func (h *History[S]) evictFront(n int) {
	h.entries = slices.Delete(h.entries, 0, n)
	h.evicted += n
	h.cursor -= n
	if h.cursor < 0 {
		h.cursor = 0
	}
}

// Undo applies the entry before the cursor backward.
func (h *History[S]) Undo(state S) error {
	if h.cursor == 0 {
		return ErrNothingToUndo
	}

	e := h.entries[h.cursor-1]
	if err := e.op.Apply(state, false); err != nil {
		return err
	}
	h.cursor--
	return nil
}

// Redo applies the entry at the cursor forward.
func (h *History[S]) Redo(state S) error {
	if h.cursor >= len(h.entries) {
		return ErrNothingToRedo
	}

	e := h.entries[h.cursor]
	if err := e.op.Apply(state, true); err != nil {
		return err
	}
	h.cursor++
	return nil
}

// CanUndo returns true if undo is available.
func (h *History[S]) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo returns true if redo is available.
func (h *History[S]) CanRedo() bool {
	return h.cursor < len(h.entries)
}

// UndoCount returns the number of undo steps available.
func (h *History[S]) UndoCount() int {
	return h.cursor
}

// RedoCount returns the number of redo steps available.
func (h *History[S]) RedoCount() int {
	return len(h.entries) - h.cursor
}

// Len returns the number of recorded entries.
func (h *History[S]) Len() int {
	return len(h.entries)
}

// Cursor returns the next redo slot.
func (h *History[S]) Cursor() int {
	return h.cursor
}

// UndoDescription describes the operation the next Undo would reverse.
func (h *History[S]) UndoDescription() (string, bool) {
	info, ok := h.PeekUndo()
	return info.Description, ok
}

// RedoDescription describes the operation the next Redo would replay.
func (h *History[S]) RedoDescription() (string, bool) {
	info, ok := h.PeekRedo()
	return info.Description, ok
}

// PeekUndo returns info about the next undo operation.
func (h *History[S]) PeekUndo() (OperationInfo, bool) {
	if h.cursor == 0 {
		return OperationInfo{}, false
	}
	return h.entries[h.cursor-1].info(), true
}

// PeekRedo returns info about the next redo operation.
func (h *History[S]) PeekRedo() (OperationInfo, bool) {
	if h.cursor >= len(h.entries) {
		return OperationInfo{}, false
	}
	return h.entries[h.cursor].info(), true
}

// UndoInfo returns info about undoable operations, oldest first.
func (h *History[S]) UndoInfo() []OperationInfo {
	result := make([]OperationInfo, 0, h.cursor)
	for _, e := range h.entries[:h.cursor] {
		result = append(result, e.info())
	}
	return result
}

// RedoInfo returns info about redoable operations, next redo first.
func (h *History[S]) RedoInfo() []OperationInfo {
	result := make([]OperationInfo, 0, len(h.entries)-h.cursor)
	for _, e := range h.entries[h.cursor:] {
		result = append(result, e.info())
	}
	return result
}

func (e entry[S]) info() OperationInfo {
	return OperationInfo{
		Description: e.op.Description(),
		Timestamp:   e.timestamp,
	}
}

// Clear removes all undo/redo history. The state is not touched.
func (h *History[S]) Clear() {
	h.truncate(h.cursor)
	h.evicted += len(h.entries)
	h.entries = nil
	h.cursor = 0
}

// SetMaxEntries changes the retention cap.
// Excess entries are dropped oldest first, but never past the cursor;
// if that is not enough the redo tail is truncated.
func (h *History[S]) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	h.maxEntries = max

	excess := len(h.entries) - max
	if excess <= 0 {
		return
	}
	front := min(excess, h.cursor)
	if front > 0 {
		h.evictFront(front)
	}
	h.truncate(max)
}

// MaxEntries returns the retention cap.
func (h *History[S]) MaxEntries() int {
	return h.maxEntries
}
