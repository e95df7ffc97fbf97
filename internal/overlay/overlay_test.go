package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/dbcedit/internal/dbc"
)

func testDocument() *dbc.Document {
	return dbc.NewDocument(
		&dbc.Message{
			ID: 0x640, Name: "Speed", Size: 8, Transmitter: "ECU1", Comment: "speed frame",
			Signals: []*dbc.Signal{
				{Name: "VehicleSpeed", Size: 16, Factor: 0.01, Unit: "km/h"},
				{Name: "Valid", StartBit: 16, Size: 1},
			},
		},
		&dbc.Message{
			ID: 0x100, Name: "Engine", Size: 4, Transmitter: "ECM",
			Signals: []*dbc.Signal{{Name: "Rpm", Size: 16}},
		},
	)
}

func TestMessageNameFallback(t *testing.T) {
	o := New(testDocument())

	assert.Equal(t, "Orig", o.MessageName(0x640, "Orig"))

	o.SetMessageName(0x640, "New")
	assert.Equal(t, "New", o.MessageName(0x640, "Orig"))

	o.SetMessageName(0x640, "")
	assert.Equal(t, "Orig", o.MessageName(0x640, "Orig"))
	assert.False(t, o.HasModifications())
}

func TestSetToOriginalRemovesOverride(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(o *Overlay)
		reset func(o *Overlay)
	}{
		{"name", func(o *Overlay) { o.SetMessageName(0x640, "X") }, func(o *Overlay) { o.SetMessageName(0x640, "Speed") }},
		{"comment", func(o *Overlay) { o.SetMessageComment(0x640, "X") }, func(o *Overlay) { o.SetMessageComment(0x640, "speed frame") }},
		{"id", func(o *Overlay) { o.SetMessageID(0x640, 0x641) }, func(o *Overlay) { o.SetMessageID(0x640, 0x640) }},
		{"size", func(o *Overlay) { o.SetMessageSize(0x640, 4) }, func(o *Overlay) { o.SetMessageSize(0x640, 8) }},
		{"transmitter", func(o *Overlay) { o.SetMessageTransmitter(0x640, "GW") }, func(o *Overlay) { o.SetMessageTransmitter(0x640, "ECU1") }},
		{"extended", func(o *Overlay) { o.SetMessageExtended(0x640, true) }, func(o *Overlay) { o.SetMessageExtended(0x640, false) }},
		{"signal", func(o *Overlay) {
			o.SetSignal(0x640, "Valid", &dbc.Signal{Name: "Ok", StartBit: 16, Size: 1})
		}, func(o *Overlay) {
			o.SetSignal(0x640, "Valid", &dbc.Signal{Name: "Valid", StartBit: 16, Size: 1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(testDocument())
			tt.edit(o)
			assert.Equal(t, 1, o.ModificationCount())
			tt.reset(o)
			assert.Equal(t, 0, o.ModificationCount())
		})
	}
}

func TestCommentFallsBackToBase(t *testing.T) {
	o := New(testDocument())
	assert.Equal(t, "speed frame", o.MessageComment(0x640))
	assert.Equal(t, "", o.MessageComment(0x100))
	assert.Equal(t, "", o.MessageComment(0xDEAD))

	o.SetMessageComment(0x100, "engine")
	assert.Equal(t, "engine", o.MessageComment(0x100))
}

func TestMissingKeysUseFallback(t *testing.T) {
	o := New(nil)
	assert.Equal(t, "fallback", o.MessageName(7, "fallback"))
	assert.Equal(t, uint32(7), o.MessageID(7))
	assert.Equal(t, uint8(3), o.MessageSize(7, 3))
	assert.Equal(t, "", o.MessageTransmitter(7))
	assert.True(t, o.MessageExtended(7, true))
	_, ok := o.SignalOverride(7, "x")
	assert.False(t, ok)
	assert.False(t, o.HasSignal(7, "x"))
	_, ok = o.MessageByID(7)
	assert.False(t, ok)
	assert.Empty(t, o.Messages())

	o.DeleteMessage(7)
	assert.False(t, o.HasModifications(), "deleting an unknown id records nothing")
}

func TestAddDeleteDuality(t *testing.T) {
	o := New(testDocument())
	m := dbc.NewMessage(0x700)

	o.AddMessage(m)
	assert.True(t, o.IsAdded(0x700))
	assert.True(t, o.HasMessage(0x700))

	o.DeleteMessage(0x700)
	assert.False(t, o.IsAdded(0x700))
	assert.False(t, o.IsDeleted(0x700))
	assert.Len(t, o.Messages(), 2)
	assert.False(t, o.HasModifications())
}

func TestDeleteAddedDropsOverrides(t *testing.T) {
	o := New(testDocument())
	o.AddMessage(dbc.NewMessage(0x300))
	o.SetMessageName(0x300, "Ghost")
	o.SetMessageSize(0x300, 2)
	o.SetSignal(0x300, "Extra", &dbc.Signal{Name: "Extra", Size: 4})
	assert.Equal(t, []string{"Extra"}, o.OverriddenSignals(0x300))

	o.DeleteMessage(0x300)
	assert.False(t, o.HasModifications())
	assert.Empty(t, o.OverriddenSignals(0x300))

	o.AddMessage(dbc.NewMessage(0x300))
	v, ok := o.MessageByID(0x300)
	require.True(t, ok)
	assert.Equal(t, "NewMessage_300", v.Name())
	assert.Equal(t, uint8(dbc.DefaultSize), v.Size())
}

func TestDeleteBaseMessage(t *testing.T) {
	o := New(testDocument())
	o.DeleteMessage(0x640)

	assert.True(t, o.IsDeleted(0x640))
	assert.False(t, o.HasMessage(0x640))
	_, ok := o.MessageByID(0x640)
	assert.False(t, ok)
	require.Len(t, o.Messages(), 1)

	o.RestoreMessage(0x640)
	assert.True(t, o.HasMessage(0x640))
	assert.False(t, o.HasModifications())
}

func TestAddClearsDeleteMark(t *testing.T) {
	o := New(testDocument())
	o.DeleteMessage(0x100)
	replacement := &dbc.Message{ID: 0x100, Name: "EngineV2", Size: 8}
	o.AddMessage(replacement)

	assert.False(t, o.IsDeleted(0x100))
	assert.True(t, o.IsAdded(0x100))

	views := o.Messages()
	var names []string
	for _, v := range views {
		if v.OriginalID() == 0x100 {
			names = append(names, v.Name())
		}
	}
	assert.Equal(t, []string{"EngineV2"}, names, "added record shadows the base message")
}

func TestAddMessageCopiesPayload(t *testing.T) {
	o := New(nil)
	m := dbc.NewMessage(0x10)
	o.AddMessage(m)
	m.Name = "Changed"

	v, ok := o.MessageByID(0x10)
	require.True(t, ok)
	assert.Equal(t, "NewMessage_010", v.Name())
}

func TestMessagesOrder(t *testing.T) {
	o := New(testDocument())
	o.AddMessage(dbc.NewMessage(0x900))
	o.AddMessage(dbc.NewMessage(0x050))

	var ids []uint32
	var origins []Origin
	for _, v := range o.Messages() {
		ids = append(ids, v.ID())
		origins = append(origins, v.Origin())
	}
	assert.Equal(t, []uint32{0x640, 0x100, 0x050, 0x900}, ids)
	assert.Equal(t, []Origin{Original, Original, Custom, Custom}, origins)
}

func TestViewResolvesOverrides(t *testing.T) {
	o := New(testDocument())
	o.SetMessageName(0x640, "VehicleSpeed")
	o.SetMessageID(0x640, 0x641)
	o.SetMessageSize(0x640, 4)
	o.SetMessageTransmitter(0x640, "GW")
	o.SetMessageExtended(0x640, true)
	o.SetSignal(0x640, "Valid", &dbc.Signal{Name: "SpeedValid", StartBit: 16, Size: 1})

	v, ok := o.MessageByID(0x640)
	require.True(t, ok)
	assert.Equal(t, Original, v.Origin())
	assert.Equal(t, uint32(0x640), v.OriginalID())
	assert.Equal(t, uint32(0x641), v.ID())
	assert.Equal(t, "VehicleSpeed", v.Name())
	assert.Equal(t, uint8(4), v.Size())
	assert.Equal(t, "GW", v.Transmitter())
	assert.True(t, v.Extended())
	assert.Equal(t, "speed frame", v.Comment())

	sigs := v.Signals()
	require.Len(t, sigs, 2)
	assert.Equal(t, "VehicleSpeed", sigs[0].Name)
	assert.Equal(t, "SpeedValid", sigs[1].Name)

	rec := v.Record()
	assert.Equal(t, "Speed", rec.Name)
	assert.Equal(t, "Valid", rec.Signals[1].Name)

	res := v.Resolve()
	assert.Equal(t, uint32(0x641), res.ID)
	assert.Equal(t, "SpeedValid", res.Signals[1].Name)

	id, ok := o.ResolveID(0x641)
	require.True(t, ok)
	assert.Equal(t, uint32(0x640), id)
	_, ok = o.ResolveID(0x640)
	assert.False(t, ok)
}

func TestCustomViewResolvesOverrides(t *testing.T) {
	o := New(nil)
	o.AddMessage(&dbc.Message{ID: 0x10, Name: "Custom", Size: 2, Comment: "c"})
	o.SetMessageName(0x10, "Renamed")

	v, ok := o.MessageByID(0x10)
	require.True(t, ok)
	assert.Equal(t, Custom, v.Origin())
	assert.Equal(t, "Renamed", v.Name())
	assert.Equal(t, "c", v.Comment())
	assert.Equal(t, "Custom", v.Record().Name)
}

func TestSearch(t *testing.T) {
	o := New(testDocument())
	o.SetMessageName(0x100, "Powertrain")
	o.AddMessage(&dbc.Message{ID: 0x300, Name: "Brake", Signals: []*dbc.Signal{{Name: "Pressure", Size: 8}}})
	o.SetSignal(0x640, "Valid", &dbc.Signal{Name: "Quality", StartBit: 16, Size: 1})

	names := func(views []MessageView) []string {
		var out []string
		for _, v := range views {
			out = append(out, v.Name())
		}
		return out
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Speed", "Powertrain", "Brake"}},
		{"POWER", []string{"Powertrain"}},
		{"engine", []string{"Powertrain"}},
		{"rpm", []string{"Powertrain"}},
		{"pressure", []string{"Brake"}},
		{"quality", []string{"Speed"}},
		{"valid", []string{"Speed"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, names(o.Search(tt.query)))
		})
	}

	o.DeleteMessage(0x640)
	assert.Empty(t, o.Search("speed"), "deleted messages are filtered from search")
}

func TestSignalOverrideIsCopied(t *testing.T) {
	o := New(testDocument())
	sig := &dbc.Signal{Name: "Ok", StartBit: 16, Size: 1}
	o.SetSignal(0x640, "Valid", sig)
	sig.Name = "Mutated"

	got, ok := o.SignalOverride(0x640, "Valid")
	require.True(t, ok)
	assert.Equal(t, "Ok", got.Name)

	o.SetSignal(0x640, "Valid", nil)
	_, ok = o.SignalOverride(0x640, "Valid")
	assert.False(t, ok)
}

func TestBaseIsNeverMutated(t *testing.T) {
	doc := testDocument()
	o := New(doc)
	o.SetMessageName(0x640, "X")
	o.DeleteMessage(0x100)
	v, _ := o.MessageByID(0x640)
	v.Signals()[0].Name = "Tampered"
	v.Record().Signals[0].Name = "Tampered"

	m, ok := doc.Message(0x640)
	require.True(t, ok)
	assert.Equal(t, "Speed", m.Name)
	assert.Equal(t, "VehicleSpeed", m.Signals[0].Name)
	_, ok = doc.Message(0x100)
	assert.True(t, ok)
}

func TestClone(t *testing.T) {
	o := New(testDocument())
	o.SetMessageName(0x640, "X")
	o.AddMessage(dbc.NewMessage(0x10))

	c := o.Clone()
	assert.Equal(t, o, c)

	c.SetMessageName(0x640, "Y")
	c.DeleteMessage(0x10)
	assert.Equal(t, "X", o.MessageName(0x640, "Speed"))
	assert.True(t, o.IsAdded(0x10))
}
