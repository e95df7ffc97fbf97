package overlay

import (
	"maps"
	"slices"
	"strings"

	"github.com/dshills/dbcedit/internal/dbc"
)

type signalKey struct {
	id   uint32
	name string
}

// Overlay is an editable view over a read-only database.
// Not safe for concurrent use.
type Overlay struct {
	base dbc.Database

	names        map[uint32]string
	comments     map[uint32]string
	ids          map[uint32]uint32
	sizes        map[uint32]uint8
	transmitters map[uint32]string
	extended     map[uint32]bool
	signals      map[signalKey]*dbc.Signal

	added   map[uint32]*dbc.Message
	deleted map[uint32]struct{}
}

// New creates an empty overlay on top of base. A nil base is treated as an
// empty document.
func New(base dbc.Database) *Overlay {
	if base == nil {
		base = dbc.NewDocument()
	}
	return &Overlay{
		base:         base,
		names:        make(map[uint32]string),
		comments:     make(map[uint32]string),
		ids:          make(map[uint32]uint32),
		sizes:        make(map[uint32]uint8),
		transmitters: make(map[uint32]string),
		extended:     make(map[uint32]bool),
		signals:      make(map[signalKey]*dbc.Signal),
		added:        make(map[uint32]*dbc.Message),
		deleted:      make(map[uint32]struct{}),
	}
}

// Base returns the underlying database.
func (o *Overlay) Base() dbc.Database {
	return o.base
}

// record returns the unedited record for an original identifier.
// Added messages shadow base messages with the same identifier.
func (o *Overlay) record(id uint32) (*dbc.Message, bool) {
	if m, ok := o.added[id]; ok {
		return m, true
	}
	return o.base.Message(id)
}

// MessageName returns the overridden name, or original.
func (o *Overlay) MessageName(id uint32, original string) string {
	if name, ok := o.names[id]; ok {
		return name
	}
	return original
}

// SetMessageName overrides a message name.
func (o *Overlay) SetMessageName(id uint32, name string) {
	if rec, ok := o.record(id); name == "" || (ok && rec.Name == name) {
		delete(o.names, id)
		return
	}
	o.names[id] = name
}

// MessageComment returns the overridden comment, else the comment from the
// base document or the added record.
func (o *Overlay) MessageComment(id uint32) string {
	if c, ok := o.comments[id]; ok {
		return c
	}
	return o.originalComment(id)
}

func (o *Overlay) originalComment(id uint32) string {
	if m, ok := o.added[id]; ok {
		return m.Comment
	}
	c, _ := o.base.Comment(id)
	return c
}

// SetMessageComment overrides a message comment.
func (o *Overlay) SetMessageComment(id uint32, comment string) {
	if comment == "" || comment == o.originalComment(id) {
		delete(o.comments, id)
		return
	}
	o.comments[id] = comment
}

// MessageID returns the remapped identifier for an original identifier.
func (o *Overlay) MessageID(original uint32) uint32 {
	if id, ok := o.ids[original]; ok {
		return id
	}
	return original
}

// SetMessageID remaps an original identifier.
func (o *Overlay) SetMessageID(original, id uint32) {
	if id == original {
		delete(o.ids, original)
		return
	}
	o.ids[original] = id
}

// MessageSize returns the overridden payload size, or original.
func (o *Overlay) MessageSize(id uint32, original uint8) uint8 {
	if size, ok := o.sizes[id]; ok {
		return size
	}
	return original
}

// SetMessageSize overrides a payload size.
func (o *Overlay) SetMessageSize(id uint32, size uint8) {
	if rec, ok := o.record(id); ok && rec.Size == size {
		delete(o.sizes, id)
		return
	}
	o.sizes[id] = size
}

// MessageTransmitter returns the overridden transmitting node, else the
// original one.
func (o *Overlay) MessageTransmitter(id uint32) string {
	if tx, ok := o.transmitters[id]; ok {
		return tx
	}
	if rec, ok := o.record(id); ok {
		return rec.Transmitter
	}
	return ""
}

// SetMessageTransmitter overrides the transmitting node.
func (o *Overlay) SetMessageTransmitter(id uint32, transmitter string) {
	if rec, ok := o.record(id); transmitter == "" || (ok && rec.Transmitter == transmitter) {
		delete(o.transmitters, id)
		return
	}
	o.transmitters[id] = transmitter
}

// MessageExtended returns the overridden frame format, or original.
func (o *Overlay) MessageExtended(id uint32, original bool) bool {
	if ext, ok := o.extended[id]; ok {
		return ext
	}
	return original
}

// SetMessageExtended overrides the frame format.
func (o *Overlay) SetMessageExtended(id uint32, extended bool) {
	if rec, ok := o.record(id); ok && rec.Extended == extended {
		delete(o.extended, id)
		return
	}
	o.extended[id] = extended
}

// SignalOverride returns the replacement for a signal, keyed by the
// signal's original name.
func (o *Overlay) SignalOverride(id uint32, name string) (*dbc.Signal, bool) {
	s, ok := o.signals[signalKey{id, name}]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// SetSignal replaces a signal. A nil signal, or one equal to the original,
// removes the override.
func (o *Overlay) SetSignal(id uint32, name string, sig *dbc.Signal) {
	key := signalKey{id, name}
	if sig == nil {
		delete(o.signals, key)
		return
	}
	if rec, ok := o.record(id); ok {
		if orig, ok := rec.Signal(name); ok && orig.Equal(sig) {
			delete(o.signals, key)
			return
		}
	}
	o.signals[key] = sig.Clone()
}

// OverriddenSignals returns the original names of the message's overridden
// signals, sorted.
func (o *Overlay) OverriddenSignals(id uint32) []string {
	var names []string
	for k := range o.signals {
		if k.id == id {
			names = append(names, k.name)
		}
	}
	slices.Sort(names)
	return names
}

// HasSignal reports whether the message declares a signal with the given
// original name.
func (o *Overlay) HasSignal(id uint32, name string) bool {
	rec, ok := o.record(id)
	if !ok {
		return false
	}
	_, ok = rec.Signal(name)
	return ok
}

// AddMessage stores a new message and clears any delete mark for its id.
func (o *Overlay) AddMessage(m *dbc.Message) {
	if m == nil {
		return
	}
	o.added[m.ID] = m.Clone()
	delete(o.deleted, m.ID)
}

// DeleteMessage hides a message. A pure addition is dropped from the added
// set together with its overrides; a base message is marked deleted.
func (o *Overlay) DeleteMessage(id uint32) {
	if _, ok := o.added[id]; ok {
		delete(o.added, id)
		if !o.IsBase(id) {
			o.clearOverrides(id)
		}
		return
	}
	if _, ok := o.base.Message(id); ok {
		o.deleted[id] = struct{}{}
	}
}

func (o *Overlay) clearOverrides(id uint32) {
	delete(o.names, id)
	delete(o.comments, id)
	delete(o.ids, id)
	delete(o.sizes, id)
	delete(o.transmitters, id)
	delete(o.extended, id)
	maps.DeleteFunc(o.signals, func(k signalKey, _ *dbc.Signal) bool {
		return k.id == id
	})
}

// RestoreMessage clears the delete mark of a base message.
func (o *Overlay) RestoreMessage(id uint32) {
	delete(o.deleted, id)
}

// IsBase reports whether the id exists in the base document, deleted or not.
func (o *Overlay) IsBase(id uint32) bool {
	_, ok := o.base.Message(id)
	return ok
}

// IsAdded reports whether the id is a message created in this overlay.
func (o *Overlay) IsAdded(id uint32) bool {
	_, ok := o.added[id]
	return ok
}

// IsDeleted reports whether a base message is hidden.
func (o *Overlay) IsDeleted(id uint32) bool {
	_, ok := o.deleted[id]
	return ok
}

// HasMessage reports whether a message is visible under its original id.
func (o *Overlay) HasMessage(id uint32) bool {
	if o.IsAdded(id) {
		return true
	}
	return o.IsBase(id) && !o.IsDeleted(id)
}

// Messages returns every visible message: base messages in declaration
// order, then added messages ordered by id.
func (o *Overlay) Messages() []MessageView {
	var out []MessageView
	for _, m := range o.base.Messages() {
		if o.IsDeleted(m.ID) || o.IsAdded(m.ID) {
			continue
		}
		out = append(out, originalView{resolved{o, m}})
	}
	for _, id := range slices.Sorted(maps.Keys(o.added)) {
		out = append(out, customView{resolved{o, o.added[id]}})
	}
	return out
}

// Search returns visible messages whose displayed name, original name or
// any signal name contains query, ignoring case. An empty query returns
// all messages.
func (o *Overlay) Search(query string) []MessageView {
	all := o.Messages()
	if query == "" {
		return all
	}
	q := strings.ToLower(query)
	contains := func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	}

	var out []MessageView
	for _, v := range all {
		if matches(v, contains) {
			out = append(out, v)
		}
	}
	return out
}

func matches(v MessageView, contains func(string) bool) bool {
	rec := v.Record()
	if contains(v.Name()) || contains(rec.Name) {
		return true
	}
	for _, s := range rec.Signals {
		if contains(s.Name) {
			return true
		}
	}
	for _, s := range v.Signals() {
		if contains(s.Name) {
			return true
		}
	}
	return false
}

// MessageByID returns the view of a visible message by original id.
func (o *Overlay) MessageByID(id uint32) (MessageView, bool) {
	if m, ok := o.added[id]; ok {
		return customView{resolved{o, m}}, true
	}
	if o.IsDeleted(id) {
		return nil, false
	}
	if m, ok := o.base.Message(id); ok {
		return originalView{resolved{o, m}}, true
	}
	return nil, false
}

// ResolveID maps a displayed identifier back to the original identifier of
// the visible message carrying it.
func (o *Overlay) ResolveID(displayed uint32) (uint32, bool) {
	for _, v := range o.Messages() {
		if v.ID() == displayed {
			return v.OriginalID(), true
		}
	}
	return 0, false
}

// HasModifications reports whether any override, addition or deletion exists.
func (o *Overlay) HasModifications() bool {
	return o.ModificationCount() > 0
}

// ModificationCount returns the total number of entries across all tables.
func (o *Overlay) ModificationCount() int {
	return len(o.names) + len(o.comments) + len(o.ids) + len(o.sizes) +
		len(o.transmitters) + len(o.extended) + len(o.signals) +
		len(o.added) + len(o.deleted)
}

// Clone returns an independent copy of the override tables sharing the
// same base document.
func (o *Overlay) Clone() *Overlay {
	c := &Overlay{
		base:         o.base,
		names:        maps.Clone(o.names),
		comments:     maps.Clone(o.comments),
		ids:          maps.Clone(o.ids),
		sizes:        maps.Clone(o.sizes),
		transmitters: maps.Clone(o.transmitters),
		extended:     maps.Clone(o.extended),
		signals:      make(map[signalKey]*dbc.Signal, len(o.signals)),
		added:        make(map[uint32]*dbc.Message, len(o.added)),
		deleted:      maps.Clone(o.deleted),
	}
	for k, s := range o.signals {
		c.signals[k] = s.Clone()
	}
	for id, m := range o.added {
		c.added[id] = m.Clone()
	}
	return c
}
