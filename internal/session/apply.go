package session

import (
	"fmt"

	"github.com/dshills/dbcedit/internal/edit"
	"github.com/dshills/dbcedit/internal/overlay"
)

// Apply mutates the overlay for one operation. forward=false reverses it.
// Composites apply their children in order, or in reverse order when going
// backward, and stop at the first failure without reverting earlier steps.
func Apply(op edit.Operation, o *overlay.Overlay, forward bool) error {
	switch op := op.(type) {
	case edit.RenameMessage:
		if !o.HasMessage(op.MessageID) {
			return messageNotFound(op.MessageID)
		}
		o.SetMessageName(op.MessageID, pick(forward, op.New, op.Old))

	case edit.ModifyMessageID:
		if !o.HasMessage(op.OriginalID) {
			return messageNotFound(op.OriginalID)
		}
		o.SetMessageID(op.OriginalID, pick(forward, op.New, op.Old))

	case edit.ModifyMessageComment:
		if !o.HasMessage(op.MessageID) {
			return messageNotFound(op.MessageID)
		}
		o.SetMessageComment(op.MessageID, pick(forward, op.New, op.Old))

	case edit.ModifyMessageSize:
		if !o.HasMessage(op.MessageID) {
			return messageNotFound(op.MessageID)
		}
		o.SetMessageSize(op.MessageID, pick(forward, op.New, op.Old))

	case edit.ModifyMessageTransmitter:
		if !o.HasMessage(op.MessageID) {
			return messageNotFound(op.MessageID)
		}
		o.SetMessageTransmitter(op.MessageID, pick(forward, op.New, op.Old))

	case edit.ModifyFrameFormat:
		if !o.HasMessage(op.MessageID) {
			return messageNotFound(op.MessageID)
		}
		o.SetMessageExtended(op.MessageID, pick(forward, op.New, op.Old))

	case edit.ModifySignal:
		if !o.HasMessage(op.MessageID) {
			return messageNotFound(op.MessageID)
		}
		if !o.HasSignal(op.MessageID, op.SignalName) {
			return fmt.Errorf("%w: 0x%X:%s", ErrSignalNotFound, op.MessageID, op.SignalName)
		}
		o.SetSignal(op.MessageID, op.SignalName, pick(forward, op.New, op.Old))

	case edit.AddMessage:
		if op.Message == nil {
			return fmt.Errorf("%w: add without payload", ErrInvalidOperation)
		}
		id := op.Message.ID
		if forward {
			if o.IsBase(id) || o.IsAdded(id) {
				return fmt.Errorf("%w: 0x%X", ErrDuplicateMessage, id)
			}
			o.AddMessage(op.Message)
			return nil
		}
		if !o.IsAdded(id) {
			return messageNotFound(id)
		}
		o.DeleteMessage(id)

	case edit.DeleteMessage:
		if op.Message == nil {
			return fmt.Errorf("%w: delete without payload", ErrInvalidOperation)
		}
		id := op.Message.ID
		if forward {
			if !o.HasMessage(id) {
				return messageNotFound(id)
			}
			o.DeleteMessage(id)
			return nil
		}
		if !op.FromBase {
			o.AddMessage(op.Message)
			return nil
		}
		if !o.IsDeleted(id) {
			return fmt.Errorf("%w: 0x%X is not marked deleted", ErrMessageNotFound, id)
		}
		o.RestoreMessage(id)

	case *edit.Composite:
		return applyComposite(op, o, forward)

	default:
		return fmt.Errorf("%w: %T", ErrUnknownOperation, op)
	}
	return nil
}

func applyComposite(c *edit.Composite, o *overlay.Overlay, forward bool) error {
	if forward {
		for i, child := range c.Ops {
			if err := Apply(child, o, true); err != nil {
				return fmt.Errorf("composite %q step %d: %w", c.String(), i, err)
			}
		}
		return nil
	}
	for i := len(c.Ops) - 1; i >= 0; i-- {
		if err := Apply(c.Ops[i], o, false); err != nil {
			return fmt.Errorf("undo composite %q step %d: %w", c.String(), i, err)
		}
	}
	return nil
}

func pick[T any](forward bool, next, prev T) T {
	if forward {
		return next
	}
	return prev
}

// bound adapts an edit.Operation to the history apply contract.
type bound struct {
	op edit.Operation
}

func (b bound) Apply(o *overlay.Overlay, forward bool) error {
	return Apply(b.op, o, forward)
}

func (b bound) Description() string {
	return b.op.String()
}
