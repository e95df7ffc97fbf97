package session

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/dbcedit/internal/dbc"
	"github.com/dshills/dbcedit/internal/edit"
	"github.com/dshills/dbcedit/internal/history"
	"github.com/dshills/dbcedit/internal/metrics"
	"github.com/dshills/dbcedit/internal/overlay"
)

// Session is one open document: an overlay and its edit history.
// Not safe for concurrent use.
type Session struct {
	id   uuid.UUID
	path string

	overlay *overlay.Overlay
	history *history.History[*overlay.Overlay]

	// group collects operations while a transaction is open.
	group *edit.Composite

	maxEntries int
	logger     *zap.Logger
	metrics    *metrics.Collector
}

// New creates a session over a base database.
func New(db dbc.Database, opts ...Option) *Session {
	s := &Session{
		id:         uuid.New(),
		maxEntries: DefaultMaxEntries,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.overlay = overlay.New(db)
	s.history = history.New[*overlay.Overlay](s.maxEntries)
	s.logger = s.logger.With(zap.String("session", s.id.String()))
	if s.path != "" {
		s.logger = s.logger.With(zap.String("path", s.path))
	}
	s.publishDepth()
	return s
}

// Open loads a DBC file and creates a session over it.
func Open(path string, opts ...Option) (*Session, error) {
	doc, err := dbc.Load(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	opts = append([]Option{WithPath(path)}, opts...)
	s := New(doc, opts...)
	s.logger.Info("document opened", zap.Int("messages", doc.Len()))
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Path returns the file the session was opened from, if any.
func (s *Session) Path() string {
	return s.path
}

// Overlay returns the session's overlay for read access.
// Mutating it directly bypasses history.
func (s *Session) Overlay() *overlay.Overlay {
	return s.overlay
}

// Apply validates op, applies it and records it in history.
func (s *Session) Apply(op edit.Operation) error {
	if err := edit.Validate(op); err != nil {
		s.metrics.RecordFailure("apply")
		return NewOperationError("apply", describe(op), err)
	}

	if s.group != nil {
		if err := Apply(op, s.overlay, true); err != nil {
			s.metrics.RecordFailure("apply")
			return NewOperationError("apply", op.String(), err)
		}
		s.group.Add(op)
		return nil
	}

	if err := s.history.ApplyNew(bound{op}, s.overlay); err != nil {
		s.metrics.RecordFailure("apply")
		s.logger.Warn("apply failed",
			zap.String("kind", op.Kind().String()),
			zap.String("operation", op.String()),
			zap.Error(err))
		return NewOperationError("apply", op.String(), err)
	}

	s.metrics.RecordApplied(op.Kind().String())
	s.publishDepth()
	s.logger.Debug("operation applied",
		zap.String("kind", op.Kind().String()),
		zap.String("operation", op.String()),
		zap.Int("steps", edit.Count(op)),
		zap.Int("cursor", s.history.Cursor()))
	return nil
}

func describe(op edit.Operation) string {
	if op == nil {
		return ""
	}
	return op.String()
}

// Transaction runs fn and records every operation it applies as one undo
// unit named name. If fn fails, its operations are reverted and nothing is
// recorded. Nested transactions join the outermost one.
func (s *Session) Transaction(name string, fn func() error) error {
	if s.group != nil {
		return fn()
	}

	group := edit.NewComposite(name)
	err := s.collect(group, fn)

	if err != nil {
		if !group.IsEmpty() {
			if rerr := Apply(group, s.overlay, false); rerr != nil {
				s.logger.Error("transaction revert failed", zap.String("transaction", name), zap.Error(rerr))
				return errors.Join(err, rerr)
			}
		}
		return err
	}

	var op edit.Operation = group
	switch len(group.Ops) {
	case 0:
		return nil
	case 1:
		op = group.Ops[0]
	}
	s.history.Record(bound{op})
	s.metrics.RecordApplied(op.Kind().String())
	s.publishDepth()
	s.logger.Debug("transaction recorded",
		zap.String("transaction", name),
		zap.Int("steps", edit.Count(op)),
		zap.Int("cursor", s.history.Cursor()))
	return nil
}

// collect runs fn with group open. A panic in fn reverts what it applied
// before the panic continues.
func (s *Session) collect(group *edit.Composite, fn func() error) error {
	s.group = group
	defer func() {
		s.group = nil
		if r := recover(); r != nil {
			if !group.IsEmpty() {
				if err := Apply(group, s.overlay, false); err != nil {
					s.logger.Error("transaction revert failed", zap.String("transaction", group.Name), zap.Error(err))
				}
			}
			panic(r)
		}
	}()
	return fn()
}

// InTransaction reports whether a transaction is open.
func (s *Session) InTransaction() bool {
	return s.group != nil
}

// Undo reverses the most recent operation.
func (s *Session) Undo() error {
	if s.group != nil {
		return NewOperationError("undo", "", ErrGroupActive)
	}
	desc, _ := s.history.UndoDescription()
	if err := s.history.Undo(s.overlay); err != nil {
		s.metrics.RecordFailure("undo")
		s.logger.Warn("undo failed", zap.String("operation", desc), zap.Error(err))
		return NewOperationError("undo", desc, err)
	}
	s.metrics.RecordUndo()
	s.publishDepth()
	s.logger.Debug("operation undone", zap.String("operation", desc), zap.Int("cursor", s.history.Cursor()))
	return nil
}

// Redo replays the most recently undone operation.
func (s *Session) Redo() error {
	if s.group != nil {
		return NewOperationError("redo", "", ErrGroupActive)
	}
	desc, _ := s.history.RedoDescription()
	if err := s.history.Redo(s.overlay); err != nil {
		s.metrics.RecordFailure("redo")
		s.logger.Warn("redo failed", zap.String("operation", desc), zap.Error(err))
		return NewOperationError("redo", desc, err)
	}
	s.metrics.RecordRedo()
	s.publishDepth()
	s.logger.Debug("operation redone", zap.String("operation", desc), zap.Int("cursor", s.history.Cursor()))
	return nil
}

// CanUndo returns true if undo is available.
func (s *Session) CanUndo() bool {
	return s.group == nil && s.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (s *Session) CanRedo() bool {
	return s.group == nil && s.history.CanRedo()
}

// UndoDescription describes what Undo would reverse.
func (s *Session) UndoDescription() (string, bool) {
	return s.history.UndoDescription()
}

// RedoDescription describes what Redo would replay.
func (s *Session) RedoDescription() (string, bool) {
	return s.history.RedoDescription()
}

// UndoInfo lists undoable operations, oldest first.
func (s *Session) UndoInfo() []history.OperationInfo {
	return s.history.UndoInfo()
}

// RedoInfo lists redoable operations, next redo first.
func (s *Session) RedoInfo() []history.OperationInfo {
	return s.history.RedoInfo()
}

// Checkpoint records the current history position.
func (s *Session) Checkpoint() history.Checkpoint {
	return s.history.CreateCheckpoint()
}

// RollbackTo returns the document to the state it had at cp: operations
// applied since are undone, and operations undone since are redone while
// the redo tail still holds them.
func (s *Session) RollbackTo(cp history.Checkpoint) error {
	defer s.publishDepth()
	if err := s.history.UndoToCheckpoint(cp, s.overlay); err != nil {
		s.metrics.RecordFailure("undo")
		return NewOperationError("rollback", "", err)
	}
	if err := s.history.RedoToCheckpoint(cp, s.overlay); err != nil {
		s.metrics.RecordFailure("redo")
		return NewOperationError("rollback", "", err)
	}
	s.logger.Debug("rolled back to checkpoint", zap.Int("cursor", s.history.Cursor()))
	return nil
}

// Since returns how many undo steps separate the current position from cp.
// It is negative when cp lies in the redo tail.
func (s *Session) Since(cp history.Checkpoint) int {
	return s.history.Since(cp)
}

func (s *Session) publishDepth() {
	s.metrics.SetHistoryDepth(s.history.UndoCount(), s.history.RedoCount())
}

// Messages returns all visible messages.
func (s *Session) Messages() []overlay.MessageView {
	return s.overlay.Messages()
}

// Search returns visible messages matching query.
func (s *Session) Search(query string) []overlay.MessageView {
	return s.overlay.Search(query)
}

// Message returns a visible message by original id.
func (s *Session) Message(id uint32) (overlay.MessageView, bool) {
	return s.overlay.MessageByID(id)
}

// Lookup returns a visible message by the identifier currently displayed.
func (s *Session) Lookup(displayed uint32) (overlay.MessageView, bool) {
	id, ok := s.overlay.ResolveID(displayed)
	if !ok {
		return nil, false
	}
	return s.overlay.MessageByID(id)
}

// Modified reports whether the document differs from the base.
func (s *Session) Modified() bool {
	return s.overlay.HasModifications()
}

// ModificationCount returns the number of override entries.
func (s *Session) ModificationCount() int {
	return s.overlay.ModificationCount()
}
