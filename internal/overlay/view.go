package overlay

import "github.com/dshills/dbcedit/internal/dbc"

// Origin tells where a visible message comes from.
type Origin uint8

const (
	// Original messages come from the base document.
	Original Origin = iota
	// Custom messages were added in the overlay.
	Custom
)

// String returns the string representation of the origin.
func (o Origin) String() string {
	if o == Custom {
		return "custom"
	}
	return "original"
}

// MessageView is a read handle over a message as currently visible.
// All accessors resolve through the overlay's override tables.
type MessageView interface {
	// Origin reports whether the message came from the base document.
	Origin() Origin

	// OriginalID is the key the overlay tables use for this message.
	OriginalID() uint32

	ID() uint32
	Name() string
	Size() uint8
	Transmitter() string
	Comment() string
	Extended() bool

	// Signals returns the signal list with signal overrides applied.
	Signals() []*dbc.Signal

	// Record returns a copy of the unedited record.
	Record() *dbc.Message

	// Resolve returns a copy of the message with every override applied.
	Resolve() *dbc.Message
}

// resolved implements the accessors shared by both origins.
type resolved struct {
	o   *Overlay
	rec *dbc.Message
}

func (r resolved) OriginalID() uint32 { return r.rec.ID }

func (r resolved) ID() uint32 { return r.o.MessageID(r.rec.ID) }

func (r resolved) Name() string { return r.o.MessageName(r.rec.ID, r.rec.Name) }

func (r resolved) Size() uint8 { return r.o.MessageSize(r.rec.ID, r.rec.Size) }

func (r resolved) Transmitter() string { return r.o.MessageTransmitter(r.rec.ID) }

func (r resolved) Comment() string { return r.o.MessageComment(r.rec.ID) }

func (r resolved) Extended() bool { return r.o.MessageExtended(r.rec.ID, r.rec.Extended) }

func (r resolved) Signals() []*dbc.Signal {
	out := make([]*dbc.Signal, len(r.rec.Signals))
	for i, s := range r.rec.Signals {
		if ov, ok := r.o.SignalOverride(r.rec.ID, s.Name); ok {
			out[i] = ov
			continue
		}
		out[i] = s.Clone()
	}
	return out
}

func (r resolved) Record() *dbc.Message { return r.rec.Clone() }

func (r resolved) Resolve() *dbc.Message {
	return &dbc.Message{
		ID:          r.ID(),
		Name:        r.Name(),
		Size:        r.Size(),
		Transmitter: r.Transmitter(),
		Extended:    r.Extended(),
		Comment:     r.Comment(),
		Signals:     r.Signals(),
	}
}

type originalView struct{ resolved }

func (originalView) Origin() Origin { return Original }

type customView struct{ resolved }

func (customView) Origin() Origin { return Custom }
