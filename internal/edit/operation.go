package edit

import (
	"fmt"

	"github.com/dshills/dbcedit/internal/dbc"
)

// Kind identifies an operation variant.
type Kind uint8

const (
	KindRenameMessage Kind = iota
	KindModifyMessageID
	KindModifyMessageComment
	KindModifyMessageSize
	KindModifyMessageTransmitter
	KindModifyFrameFormat
	KindModifySignal
	KindAddMessage
	KindDeleteMessage
	KindComposite
)

var kindNames = [...]string{
	KindRenameMessage:            "rename_message",
	KindModifyMessageID:          "modify_message_id",
	KindModifyMessageComment:     "modify_message_comment",
	KindModifyMessageSize:        "modify_message_size",
	KindModifyMessageTransmitter: "modify_message_transmitter",
	KindModifyFrameFormat:        "modify_frame_format",
	KindModifySignal:             "modify_signal",
	KindAddMessage:               "add_message",
	KindDeleteMessage:            "delete_message",
	KindComposite:                "composite",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Operation is one atomic, reversible edit.
type Operation interface {
	// Kind returns the variant tag.
	Kind() Kind

	// String returns a human-readable description.
	String() string

	sealed()
}

// RenameMessage changes a message name.
type RenameMessage struct {
	MessageID uint32 `validate:"lte=536870911"`
	Old       string
	New       string `validate:"required"`
}

// ModifyMessageID remaps the identifier of the message keyed by OriginalID.
type ModifyMessageID struct {
	OriginalID uint32 `validate:"lte=536870911"`
	Old        uint32 `validate:"lte=536870911"`
	New        uint32 `validate:"lte=536870911"`
}

// ModifyMessageComment changes a message comment.
type ModifyMessageComment struct {
	MessageID uint32 `validate:"lte=536870911"`
	Old       string
	New       string
}

// ModifyMessageSize changes the payload size in bytes.
type ModifyMessageSize struct {
	MessageID uint32 `validate:"lte=536870911"`
	Old       uint8  `validate:"lte=64"`
	New       uint8  `validate:"lte=64"`
}

// ModifyMessageTransmitter changes the transmitting node.
type ModifyMessageTransmitter struct {
	MessageID uint32 `validate:"lte=536870911"`
	Old       string
	New       string
}

// ModifyFrameFormat switches between standard and extended identifiers.
type ModifyFrameFormat struct {
	MessageID uint32 `validate:"lte=536870911"`
	Old       bool
	New       bool
}

// ModifySignal replaces the signal whose original name is SignalName.
// A nil Old or New means no override in that state.
type ModifySignal struct {
	MessageID  uint32 `validate:"lte=536870911"`
	SignalName string `validate:"required"`
	Old        *dbc.Signal
	New        *dbc.Signal
}

// AddMessage creates a message that does not exist in the base document.
type AddMessage struct {
	Message *dbc.Message `validate:"required"`
}

// DeleteMessage hides a message. FromBase records whether the message
// came from the base document, which decides how undo restores it.
type DeleteMessage struct {
	Message  *dbc.Message `validate:"required"`
	FromBase bool
}

// Composite groups operations that must be applied and undone as a unit.
type Composite struct {
	Name string
	Ops  []Operation
}

// NewComposite creates a composite operation.
func NewComposite(name string, ops ...Operation) *Composite {
	return &Composite{Name: name, Ops: ops}
}

// Add appends an operation to the composite.
func (c *Composite) Add(op Operation) {
	c.Ops = append(c.Ops, op)
}

// IsEmpty reports whether the composite holds no operations.
func (c *Composite) IsEmpty() bool {
	return len(c.Ops) == 0
}

func (RenameMessage) Kind() Kind            { return KindRenameMessage }
func (ModifyMessageID) Kind() Kind          { return KindModifyMessageID }
func (ModifyMessageComment) Kind() Kind     { return KindModifyMessageComment }
func (ModifyMessageSize) Kind() Kind        { return KindModifyMessageSize }
func (ModifyMessageTransmitter) Kind() Kind { return KindModifyMessageTransmitter }
func (ModifyFrameFormat) Kind() Kind        { return KindModifyFrameFormat }
func (ModifySignal) Kind() Kind             { return KindModifySignal }
func (AddMessage) Kind() Kind               { return KindAddMessage }
func (DeleteMessage) Kind() Kind            { return KindDeleteMessage }
func (*Composite) Kind() Kind               { return KindComposite }

func (RenameMessage) sealed()            {}
func (ModifyMessageID) sealed()          {}
func (ModifyMessageComment) sealed()     {}
func (ModifyMessageSize) sealed()        {}
func (ModifyMessageTransmitter) sealed() {}
func (ModifyFrameFormat) sealed()        {}
func (ModifySignal) sealed()             {}
func (AddMessage) sealed()               {}
func (DeleteMessage) sealed()            {}
func (*Composite) sealed()               {}

func (op RenameMessage) String() string {
	return fmt.Sprintf("Rename message 0x%X: %q -> %q", op.MessageID, op.Old, op.New)
}

func (op ModifyMessageID) String() string {
	return fmt.Sprintf("Change id of message 0x%X: 0x%X -> 0x%X", op.OriginalID, op.Old, op.New)
}

func (op ModifyMessageComment) String() string {
	return fmt.Sprintf("Edit comment of message 0x%X: %q -> %q", op.MessageID, op.Old, op.New)
}

func (op ModifyMessageSize) String() string {
	return fmt.Sprintf("Resize message 0x%X: %d -> %d", op.MessageID, op.Old, op.New)
}

func (op ModifyMessageTransmitter) String() string {
	return fmt.Sprintf("Change transmitter of message 0x%X: %q -> %q", op.MessageID, op.Old, op.New)
}

func (op ModifyFrameFormat) String() string {
	return fmt.Sprintf("Change frame format of message 0x%X: %s -> %s", op.MessageID, frameFormat(op.Old), frameFormat(op.New))
}

func frameFormat(extended bool) string {
	if extended {
		return "extended"
	}
	return "standard"
}

func (op ModifySignal) String() string {
	if op.New != nil && op.New.Name != op.SignalName {
		return fmt.Sprintf("Edit signal 0x%X:%s (now %s)", op.MessageID, op.SignalName, op.New.Name)
	}
	return fmt.Sprintf("Edit signal 0x%X:%s", op.MessageID, op.SignalName)
}

func (op AddMessage) String() string {
	if op.Message == nil {
		return "Add message"
	}
	return fmt.Sprintf("Add message 0x%X (%q)", op.Message.ID, op.Message.Name)
}

func (op DeleteMessage) String() string {
	if op.Message == nil {
		return "Delete message"
	}
	return fmt.Sprintf("Delete message 0x%X (%q)", op.Message.ID, op.Message.Name)
}

func (c *Composite) String() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Ops) == 1 {
		return c.Ops[0].String()
	}
	return fmt.Sprintf("%d operations", len(c.Ops))
}

// MessageIDOf returns the original message identifier an operation targets.
// Composites report false.
func MessageIDOf(op Operation) (uint32, bool) {
	switch op := op.(type) {
	case RenameMessage:
		return op.MessageID, true
	case ModifyMessageID:
		return op.OriginalID, true
	case ModifyMessageComment:
		return op.MessageID, true
	case ModifyMessageSize:
		return op.MessageID, true
	case ModifyMessageTransmitter:
		return op.MessageID, true
	case ModifyFrameFormat:
		return op.MessageID, true
	case ModifySignal:
		return op.MessageID, true
	case AddMessage:
		if op.Message != nil {
			return op.Message.ID, true
		}
	case DeleteMessage:
		if op.Message != nil {
			return op.Message.ID, true
		}
	}
	return 0, false
}

// Count returns the number of leaf operations, descending into composites.
func Count(op Operation) int {
	c, ok := op.(*Composite)
	if !ok {
		return 1
	}
	n := 0
	for _, child := range c.Ops {
		n += Count(child)
	}
	return n
}
