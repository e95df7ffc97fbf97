package dbc

// Database is the read interface over a parsed CAN database.
type Database interface {
	// Messages returns all messages in declaration order.
	Messages() []*Message

	// Message looks a message up by identifier.
	Message(id uint32) (*Message, bool)

	// Comment returns the message comment for an identifier, if any.
	Comment(id uint32) (string, bool)
}

// Document is an in-memory Database.
// It is never modified after construction.
type Document struct {
	messages []*Message
	byID     map[uint32]*Message
}

// NewDocument builds a Document from message records.
// When identifiers repeat, the first declaration wins.
func NewDocument(msgs ...*Message) *Document {
	d := &Document{
		messages: make([]*Message, 0, len(msgs)),
		byID:     make(map[uint32]*Message, len(msgs)),
	}
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if _, dup := d.byID[m.ID]; dup {
			continue
		}
		c := m.Clone()
		d.messages = append(d.messages, c)
		d.byID[c.ID] = c
	}
	return d
}

// Messages returns all messages in declaration order.
func (d *Document) Messages() []*Message {
	out := make([]*Message, len(d.messages))
	copy(out, d.messages)
	return out
}

// Message looks a message up by identifier.
func (d *Document) Message(id uint32) (*Message, bool) {
	m, ok := d.byID[id]
	return m, ok
}

// Comment returns the message comment, if one was declared.
func (d *Document) Comment(id uint32) (string, bool) {
	m, ok := d.byID[id]
	if !ok || m.Comment == "" {
		return "", false
	}
	return m.Comment, true
}

// Len returns the number of messages.
func (d *Document) Len() int {
	return len(d.messages)
}
