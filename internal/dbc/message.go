package dbc

import (
	"fmt"
	"slices"
)

// Limits for message fields.
const (
	MaxStandardID = 0x7FF
	MaxExtendedID = 0x1FFFFFFF
	MaxSize       = 64 // CAN FD payload
	DefaultSize   = 8
)

// ByteOrder is the bit layout of a signal inside the payload.
type ByteOrder uint8

const (
	// LittleEndian is Intel byte order.
	LittleEndian ByteOrder = iota
	// BigEndian is Motorola byte order.
	BigEndian
)

// String returns the string representation of the byte order.
func (b ByteOrder) String() string {
	switch b {
	case LittleEndian:
		return "little_endian"
	case BigEndian:
		return "big_endian"
	default:
		return "unknown"
	}
}

// ValueType is the signedness of a signal's raw value.
type ValueType uint8

const (
	// Unsigned raw values.
	Unsigned ValueType = iota
	// Signed raw values (two's complement).
	Signed
)

// String returns the string representation of the value type.
func (v ValueType) String() string {
	if v == Signed {
		return "signed"
	}
	return "unsigned"
}

// Signal is one signal definition inside a message.
type Signal struct {
	Name      string    `validate:"required"`
	StartBit  uint16    `validate:"lt=512"`
	Size      uint16    `validate:"min=1,max=64"`
	ByteOrder ByteOrder `validate:"lte=1"`
	ValueType ValueType `validate:"lte=1"`
	Factor    float64
	Offset    float64
	Min       float64
	Max       float64
	Unit      string
	Receivers []string
	Comment   string
}

// Clone returns a deep copy of the signal.
func (s *Signal) Clone() *Signal {
	if s == nil {
		return nil
	}
	c := *s
	c.Receivers = slices.Clone(s.Receivers)
	return &c
}

// Equal reports whether two signals have identical fields.
func (s *Signal) Equal(other *Signal) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name &&
		s.StartBit == other.StartBit &&
		s.Size == other.Size &&
		s.ByteOrder == other.ByteOrder &&
		s.ValueType == other.ValueType &&
		s.Factor == other.Factor &&
		s.Offset == other.Offset &&
		s.Min == other.Min &&
		s.Max == other.Max &&
		s.Unit == other.Unit &&
		s.Comment == other.Comment &&
		slices.Equal(s.Receivers, other.Receivers)
}

// Message is a complete message record.
type Message struct {
	ID          uint32 `validate:"lte=536870911"`
	Name        string `validate:"required"`
	Size        uint8  `validate:"lte=64"`
	Transmitter string
	Extended    bool
	Comment     string
	Signals     []*Signal `validate:"dive"`
}

// NewMessage returns the default record for a freshly created message.
func NewMessage(id uint32) *Message {
	return &Message{
		ID:       id,
		Name:     fmt.Sprintf("NewMessage_%03X", id),
		Size:     DefaultSize,
		Extended: id > MaxStandardID,
	}
}

// Duplicate returns a copy of the message under a new identifier.
func (m *Message) Duplicate(newID uint32) *Message {
	c := m.Clone()
	c.ID = newID
	c.Name = m.Name + "_Copy"
	if newID > MaxStandardID {
		c.Extended = true
	}
	return c
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.Signals != nil {
		c.Signals = make([]*Signal, len(m.Signals))
		for i, s := range m.Signals {
			c.Signals[i] = s.Clone()
		}
	}
	return &c
}

// Equal reports whether two messages have identical fields and signals.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.ID != other.ID || m.Name != other.Name || m.Size != other.Size ||
		m.Transmitter != other.Transmitter || m.Extended != other.Extended ||
		m.Comment != other.Comment || len(m.Signals) != len(other.Signals) {
		return false
	}
	for i := range m.Signals {
		if !m.Signals[i].Equal(other.Signals[i]) {
			return false
		}
	}
	return true
}

// Signal returns the signal with the given name.
func (m *Message) Signal(name string) (*Signal, bool) {
	for _, s := range m.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// String returns a short display form.
func (m *Message) String() string {
	return fmt.Sprintf("0x%X %s", m.ID, m.Name)
}
