package script

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/dbcedit/internal/dbc"
	"github.com/dshills/dbcedit/internal/history"
	"github.com/dshills/dbcedit/internal/overlay"
	"github.com/dshills/dbcedit/internal/session"
)

// ErrCallLimit indicates a script made more dbc calls than allowed.
var ErrCallLimit = errors.New("script call limit exceeded")

// Module implements the dbc Lua table.
type Module struct {
	session *session.Session

	limit int
	calls int
	edits int
	err   error

	// floor, when set, is the position undo() may not go past.
	floor *history.Checkpoint
}

// NewModule creates a module bound to s. A limit of zero allows any number
// of calls.
func NewModule(s *session.Session, limit int) *Module {
	return &Module{session: s, limit: limit}
}

// LimitUndo stops undo() from reversing operations recorded before cp.
func (m *Module) LimitUndo(cp history.Checkpoint) {
	m.floor = &cp
}

func (m *Module) canUndoHere() bool {
	if m.floor != nil && m.session.Since(*m.floor) <= 0 {
		return false
	}
	return m.session.CanUndo()
}

// Name returns the global the module is registered under.
func (m *Module) Name() string {
	return "dbc"
}

// Calls returns the number of dbc calls made so far.
func (m *Module) Calls() int {
	return m.calls
}

// Edits returns the number of successful edit calls.
func (m *Module) Edits() int {
	return m.edits
}

// Err returns the last host error raised into Lua.
func (m *Module) Err() error {
	return m.err
}

func (m *Module) raise(L *lua.LState, name string, err error) {
	m.err = err
	L.RaiseError("%s: %v", name, err)
}

// Register installs the module into the Lua state.
func (m *Module) Register(L *lua.LState) error {
	funcs := map[string]lua.LGFunction{
		"messages":        m.messages,
		"search":          m.search,
		"message":         m.message,
		"rename":          m.rename,
		"set_id":          m.setID,
		"set_size":        m.setSize,
		"set_comment":     m.setComment,
		"set_transmitter": m.setTransmitter,
		"set_extended":    m.setExtended,
		"delete":          m.delete,
		"add":             m.add,
		"duplicate":       m.duplicate,
		"undo":            m.undo,
		"redo":            m.redo,
		"can_undo":        m.canUndo,
		"can_redo":        m.canRedo,
		"modified":        m.modified,
	}

	mod := L.NewTable()
	for name, fn := range funcs {
		L.SetField(mod, name, L.NewFunction(m.counted(fn)))
	}
	L.SetGlobal(m.Name(), mod)
	return nil
}

// counted enforces the call limit before running fn.
func (m *Module) counted(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		m.calls++
		if m.limit > 0 && m.calls > m.limit {
			m.raise(L, "dbc", fmt.Errorf("%w (%d)", ErrCallLimit, m.limit))
			return 0
		}
		return fn(L)
	}
}

// edited raises a Lua error for err or counts a successful edit.
func (m *Module) edited(L *lua.LState, name string, err error) int {
	if err != nil {
		m.raise(L, name, err)
		return 0
	}
	m.edits++
	return 0
}

func checkID(L *lua.LState, n int) uint32 {
	v := L.CheckInt64(n)
	if v < 0 || v > dbc.MaxExtendedID {
		L.ArgError(n, fmt.Sprintf("identifier 0x%X out of range", v))
		return 0
	}
	return uint32(v)
}

func checkSize(L *lua.LState, n int) uint8 {
	v := L.CheckInt(n)
	if v < 0 || v > dbc.MaxSize {
		L.ArgError(n, fmt.Sprintf("size %d out of range", v))
		return 0
	}
	return uint8(v)
}

// messageTable converts a view to a Lua table.
func messageTable(L *lua.LState, v overlay.MessageView) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LNumber(v.ID()))
	L.SetField(t, "original_id", lua.LNumber(v.OriginalID()))
	L.SetField(t, "name", lua.LString(v.Name()))
	L.SetField(t, "size", lua.LNumber(v.Size()))
	L.SetField(t, "transmitter", lua.LString(v.Transmitter()))
	L.SetField(t, "comment", lua.LString(v.Comment()))
	L.SetField(t, "extended", lua.LBool(v.Extended()))
	L.SetField(t, "origin", lua.LString(v.Origin().String()))

	signals := L.NewTable()
	for _, s := range v.Signals() {
		st := L.NewTable()
		L.SetField(st, "name", lua.LString(s.Name))
		L.SetField(st, "start_bit", lua.LNumber(s.StartBit))
		L.SetField(st, "size", lua.LNumber(s.Size))
		L.SetField(st, "unit", lua.LString(s.Unit))
		signals.Append(st)
	}
	L.SetField(t, "signals", signals)
	return t
}

func listTable(L *lua.LState, views []overlay.MessageView) *lua.LTable {
	t := L.NewTable()
	for _, v := range views {
		t.Append(messageTable(L, v))
	}
	return t
}

// messages() -> table
// Returns every visible message.
func (m *Module) messages(L *lua.LState) int {
	L.Push(listTable(L, m.session.Messages()))
	return 1
}

// search(query) -> table
// Returns messages whose name or signal names contain query.
func (m *Module) search(L *lua.LState) int {
	L.Push(listTable(L, m.session.Search(L.CheckString(1))))
	return 1
}

// message(id) -> table or nil
func (m *Module) message(L *lua.LState) int {
	v, ok := m.session.Message(checkID(L, 1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(messageTable(L, v))
	return 1
}

// rename(id, name)
func (m *Module) rename(L *lua.LState) int {
	return m.edited(L, "rename", m.session.RenameMessage(checkID(L, 1), L.CheckString(2)))
}

// set_id(id, new_id)
func (m *Module) setID(L *lua.LState) int {
	return m.edited(L, "set_id", m.session.SetMessageID(checkID(L, 1), checkID(L, 2)))
}

// set_size(id, bytes)
func (m *Module) setSize(L *lua.LState) int {
	return m.edited(L, "set_size", m.session.SetMessageSize(checkID(L, 1), checkSize(L, 2)))
}

// set_comment(id, text)
func (m *Module) setComment(L *lua.LState) int {
	return m.edited(L, "set_comment", m.session.SetMessageComment(checkID(L, 1), L.CheckString(2)))
}

// set_transmitter(id, node)
func (m *Module) setTransmitter(L *lua.LState) int {
	return m.edited(L, "set_transmitter", m.session.SetMessageTransmitter(checkID(L, 1), L.CheckString(2)))
}

// set_extended(id, bool)
func (m *Module) setExtended(L *lua.LState) int {
	return m.edited(L, "set_extended", m.session.SetFrameFormat(checkID(L, 1), L.CheckBool(2)))
}

// delete(id)
func (m *Module) delete(L *lua.LState) int {
	return m.edited(L, "delete", m.session.DeleteMessage(checkID(L, 1)))
}

// add(id [, name [, size]])
// Creates a message with default fields for any argument left out.
func (m *Module) add(L *lua.LState) int {
	msg := dbc.NewMessage(checkID(L, 1))
	if L.GetTop() >= 2 {
		msg.Name = L.CheckString(2)
	}
	if L.GetTop() >= 3 {
		msg.Size = checkSize(L, 3)
	}
	return m.edited(L, "add", m.session.AddMessage(msg))
}

// duplicate(id, new_id)
func (m *Module) duplicate(L *lua.LState) int {
	return m.edited(L, "duplicate", m.session.DuplicateMessage(checkID(L, 1), checkID(L, 2)))
}

// undo() -> bool
// Returns false when there is nothing to undo, or only edits made before
// the script started.
func (m *Module) undo(L *lua.LState) int {
	if m.session.InTransaction() {
		m.raise(L, "undo", session.ErrGroupActive)
		return 0
	}
	if !m.canUndoHere() {
		L.Push(lua.LFalse)
		return 1
	}
	if err := m.session.Undo(); err != nil {
		m.raise(L, "undo", err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

// redo() -> bool
// Returns false when there is nothing to redo.
func (m *Module) redo(L *lua.LState) int {
	if m.session.InTransaction() {
		m.raise(L, "redo", session.ErrGroupActive)
		return 0
	}
	if !m.session.CanRedo() {
		L.Push(lua.LFalse)
		return 1
	}
	if err := m.session.Redo(); err != nil {
		m.raise(L, "redo", err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *Module) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(m.canUndoHere()))
	return 1
}

func (m *Module) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(m.session.CanRedo()))
	return 1
}

func (m *Module) modified(L *lua.LState) int {
	L.Push(lua.LBool(m.session.Modified()))
	return 1
}
