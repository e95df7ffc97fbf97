package session

import (
	"fmt"

	"github.com/dshills/dbcedit/internal/dbc"
	"github.com/dshills/dbcedit/internal/edit"
	"github.com/dshills/dbcedit/internal/overlay"
)

// The request methods below read the current value from the overlay,
// build the matching operation and apply it. A request that would not
// change anything records nothing.

func (s *Session) view(action string, id uint32) (overlay.MessageView, error) {
	v, ok := s.overlay.MessageByID(id)
	if !ok {
		return nil, NewOperationError(action, fmt.Sprintf("0x%X", id), messageNotFound(id))
	}
	return v, nil
}

// idInUse reports whether a displayed id belongs to a visible message other
// than the one keyed by except.
func (s *Session) idInUse(displayed, except uint32) bool {
	for _, v := range s.overlay.Messages() {
		if v.OriginalID() != except && v.ID() == displayed {
			return true
		}
	}
	return false
}

// RenameMessage renames the message keyed by id.
func (s *Session) RenameMessage(id uint32, name string) error {
	v, err := s.view("rename", id)
	if err != nil {
		return err
	}
	if v.Name() == name {
		return nil
	}
	return s.Apply(edit.RenameMessage{MessageID: id, Old: v.Name(), New: name})
}

// SetMessageID changes the displayed identifier of the message keyed by id.
func (s *Session) SetMessageID(id, newID uint32) error {
	v, err := s.view("set id", id)
	if err != nil {
		return err
	}
	if v.ID() == newID {
		return nil
	}
	if err := s.checkID(id, newID, v.Extended()); err != nil {
		return NewOperationError("set id", fmt.Sprintf("0x%X", id), err)
	}
	return s.Apply(edit.ModifyMessageID{OriginalID: id, Old: v.ID(), New: newID})
}

func (s *Session) checkID(id, newID uint32, extended bool) error {
	if !extended && newID > dbc.MaxStandardID {
		return fmt.Errorf("%w: 0x%X needs an extended frame", ErrInvalidOperation, newID)
	}
	if s.idInUse(newID, id) {
		return fmt.Errorf("%w: 0x%X", ErrDuplicateMessage, newID)
	}
	return nil
}

// SetMessageComment changes the message comment.
func (s *Session) SetMessageComment(id uint32, comment string) error {
	v, err := s.view("set comment", id)
	if err != nil {
		return err
	}
	if v.Comment() == comment {
		return nil
	}
	return s.Apply(edit.ModifyMessageComment{MessageID: id, Old: v.Comment(), New: comment})
}

// SetMessageSize changes the payload size in bytes.
func (s *Session) SetMessageSize(id uint32, size uint8) error {
	v, err := s.view("set size", id)
	if err != nil {
		return err
	}
	if v.Size() == size {
		return nil
	}
	return s.Apply(edit.ModifyMessageSize{MessageID: id, Old: v.Size(), New: size})
}

// SetMessageTransmitter changes the transmitting node.
func (s *Session) SetMessageTransmitter(id uint32, transmitter string) error {
	v, err := s.view("set transmitter", id)
	if err != nil {
		return err
	}
	if v.Transmitter() == transmitter {
		return nil
	}
	return s.Apply(edit.ModifyMessageTransmitter{MessageID: id, Old: v.Transmitter(), New: transmitter})
}

// SetFrameFormat switches between standard and extended identifiers.
func (s *Session) SetFrameFormat(id uint32, extended bool) error {
	v, err := s.view("set frame format", id)
	if err != nil {
		return err
	}
	if v.Extended() == extended {
		return nil
	}
	if !extended && v.ID() > dbc.MaxStandardID {
		return NewOperationError("set frame format", fmt.Sprintf("0x%X", id),
			fmt.Errorf("%w: 0x%X does not fit a standard frame", ErrInvalidOperation, v.ID()))
	}
	return s.Apply(edit.ModifyFrameFormat{MessageID: id, Old: v.Extended(), New: extended})
}

// SetSignal replaces the signal whose original name is name.
func (s *Session) SetSignal(id uint32, name string, sig *dbc.Signal) error {
	if _, err := s.view("set signal", id); err != nil {
		return err
	}
	if !s.overlay.HasSignal(id, name) {
		return NewOperationError("set signal", fmt.Sprintf("0x%X:%s", id, name),
			fmt.Errorf("%w: %s", ErrSignalNotFound, name))
	}
	old, _ := s.overlay.SignalOverride(id, name)
	if old.Equal(sig) {
		return nil
	}
	return s.Apply(edit.ModifySignal{MessageID: id, SignalName: name, Old: old, New: sig.Clone()})
}

// ResetSignal removes any override of a signal.
func (s *Session) ResetSignal(id uint32, name string) error {
	return s.SetSignal(id, name, nil)
}

// AddMessage creates a new message. Its id must not be visible and must
// not belong to the base document.
func (s *Session) AddMessage(m *dbc.Message) error {
	if m == nil {
		return NewOperationError("add", "", fmt.Errorf("%w: nil message", ErrInvalidOperation))
	}
	target := fmt.Sprintf("0x%X", m.ID)
	if s.overlay.HasMessage(m.ID) || s.overlay.IsBase(m.ID) || s.idInUse(m.ID, m.ID) {
		return NewOperationError("add", target, fmt.Errorf("%w: 0x%X", ErrDuplicateMessage, m.ID))
	}
	return s.Apply(edit.AddMessage{Message: m.Clone()})
}

// NewMessage creates a default message with the given id.
func (s *Session) NewMessage(id uint32) error {
	return s.AddMessage(dbc.NewMessage(id))
}

// DuplicateMessage copies the message as currently displayed under newID.
func (s *Session) DuplicateMessage(id, newID uint32) error {
	v, err := s.view("duplicate", id)
	if err != nil {
		return err
	}
	return s.AddMessage(v.Resolve().Duplicate(newID))
}

// DeleteMessage hides the message keyed by id.
func (s *Session) DeleteMessage(id uint32) error {
	v, err := s.view("delete", id)
	if err != nil {
		return err
	}
	del := edit.DeleteMessage{
		Message:  v.Record(),
		FromBase: v.Origin() == overlay.Original,
	}
	if del.FromBase {
		return s.Apply(del)
	}

	// Deleting an addition drops its overrides, so reset them first
	// and let undo put them back.
	group := edit.NewComposite(del.String())
	for _, op := range s.resetOverrides(v) {
		group.Add(op)
	}
	if group.IsEmpty() {
		return s.Apply(del)
	}
	group.Add(del)
	return s.Apply(group)
}

// resetOverrides returns the operations that set every field of v back to
// its record value.
func (s *Session) resetOverrides(v overlay.MessageView) []edit.Operation {
	rec := v.Record()
	id := rec.ID
	var ops []edit.Operation
	if v.Name() != rec.Name {
		ops = append(ops, edit.RenameMessage{MessageID: id, Old: v.Name(), New: rec.Name})
	}
	if v.Extended() != rec.Extended {
		ops = append(ops, edit.ModifyFrameFormat{MessageID: id, Old: v.Extended(), New: rec.Extended})
	}
	if v.ID() != id {
		ops = append(ops, edit.ModifyMessageID{OriginalID: id, Old: v.ID(), New: id})
	}
	if v.Size() != rec.Size {
		ops = append(ops, edit.ModifyMessageSize{MessageID: id, Old: v.Size(), New: rec.Size})
	}
	if v.Transmitter() != rec.Transmitter {
		ops = append(ops, edit.ModifyMessageTransmitter{MessageID: id, Old: v.Transmitter(), New: rec.Transmitter})
	}
	if v.Comment() != rec.Comment {
		ops = append(ops, edit.ModifyMessageComment{MessageID: id, Old: v.Comment(), New: rec.Comment})
	}
	for _, name := range s.overlay.OverriddenSignals(id) {
		old, _ := s.overlay.SignalOverride(id, name)
		ops = append(ops, edit.ModifySignal{MessageID: id, SignalName: name, Old: old})
	}
	return ops
}

// MessageForm holds every message-level field of an edit form.
type MessageForm struct {
	ID          uint32
	Name        string
	Size        uint8
	Transmitter string
	Comment     string
	Extended    bool
}

// FormOf returns the form pre-filled with the message's current values.
func FormOf(v overlay.MessageView) MessageForm {
	return MessageForm{
		ID:          v.ID(),
		Name:        v.Name(),
		Size:        v.Size(),
		Transmitter: v.Transmitter(),
		Comment:     v.Comment(),
		Extended:    v.Extended(),
	}
}

// EditMessage applies every changed field of a form as one undo unit.
func (s *Session) EditMessage(id uint32, form MessageForm) error {
	v, err := s.view("edit", id)
	if err != nil {
		return err
	}
	if form.ID != v.ID() || form.Extended != v.Extended() {
		if err := s.checkID(id, form.ID, form.Extended); err != nil {
			return NewOperationError("edit", fmt.Sprintf("0x%X", id), err)
		}
	}

	c := edit.NewComposite(fmt.Sprintf("Edit message 0x%X", v.ID()))
	if form.Name != v.Name() {
		c.Add(edit.RenameMessage{MessageID: id, Old: v.Name(), New: form.Name})
	}
	if form.Extended != v.Extended() {
		c.Add(edit.ModifyFrameFormat{MessageID: id, Old: v.Extended(), New: form.Extended})
	}
	if form.ID != v.ID() {
		c.Add(edit.ModifyMessageID{OriginalID: id, Old: v.ID(), New: form.ID})
	}
	if form.Size != v.Size() {
		c.Add(edit.ModifyMessageSize{MessageID: id, Old: v.Size(), New: form.Size})
	}
	if form.Transmitter != v.Transmitter() {
		c.Add(edit.ModifyMessageTransmitter{MessageID: id, Old: v.Transmitter(), New: form.Transmitter})
	}
	if form.Comment != v.Comment() {
		c.Add(edit.ModifyMessageComment{MessageID: id, Old: v.Comment(), New: form.Comment})
	}

	if c.IsEmpty() {
		return nil
	}
	return s.Apply(c)
}
