package dbc

import (
	"fmt"
	"os"

	candbc "go.einride.tech/can/pkg/dbc"
)

// independentSignalsMessage is the pseudo message some tools emit to hold
// signals not attached to any frame.
const independentSignalsMessage = "VECTOR__INDEPENDENT_SIG_MSG"

// Load reads and parses a DBC file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}
	return Parse(path, data)
}

// Parse parses DBC text. The name is used in error messages only.
func Parse(name string, data []byte) (*Document, error) {
	p := candbc.NewParser(name, data)
	if err := p.Parse(); err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	return fromDefs(p.Defs()), nil
}

// fromDefs converts parser definitions into a Document.
func fromDefs(defs []candbc.Def) *Document {
	var msgs []*Message
	byID := make(map[uint32]*Message)

	for _, def := range defs {
		md, ok := def.(*candbc.MessageDef)
		if !ok || string(md.Name) == independentSignalsMessage {
			continue
		}
		m := &Message{
			ID:          md.MessageID.ToCAN(),
			Name:        string(md.Name),
			Size:        clampSize(md.Size),
			Transmitter: string(md.Transmitter),
			Extended:    md.MessageID.IsExtended(),
		}
		for i := range md.Signals {
			m.Signals = append(m.Signals, fromSignalDef(&md.Signals[i]))
		}
		if _, dup := byID[m.ID]; dup {
			continue
		}
		byID[m.ID] = m
		msgs = append(msgs, m)
	}

	for _, def := range defs {
		cd, ok := def.(*candbc.CommentDef)
		if !ok {
			continue
		}
		m, found := byID[cd.MessageID.ToCAN()]
		if !found {
			continue
		}
		switch cd.ObjectType {
		case candbc.ObjectTypeMessage:
			m.Comment = cd.Comment
		case candbc.ObjectTypeSignal:
			if s, ok := m.Signal(string(cd.SignalName)); ok {
				s.Comment = cd.Comment
			}
		}
	}

	return NewDocument(msgs...)
}

func fromSignalDef(sd *candbc.SignalDef) *Signal {
	s := &Signal{
		Name:     string(sd.Name),
		StartBit: uint16(sd.StartBit),
		Size:     uint16(sd.Size),
		Factor:   sd.Factor,
		Offset:   sd.Offset,
		Min:      sd.Minimum,
		Max:      sd.Maximum,
		Unit:     sd.Unit,
	}
	if sd.IsBigEndian {
		s.ByteOrder = BigEndian
	}
	if sd.IsSigned {
		s.ValueType = Signed
	}
	for _, r := range sd.Receivers {
		s.Receivers = append(s.Receivers, string(r))
	}
	return s
}

func clampSize(n uint64) uint8 {
	if n > MaxSize {
		return MaxSize
	}
	return uint8(n)
}
