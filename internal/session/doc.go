// Package session binds edit operations to an overlay and owns the document
// session a presentation layer talks to.
//
// Apply is the only code that knows both what an edit.Operation means and
// how the overlay is shaped. The history package records operations
// through a thin adapter and never sees either.
//
// A Session pairs one overlay with one history. Edit requests such as
// RenameMessage read the current value from the overlay first, build the
// matching operation, and hand it to the history:
//
//	s, err := session.Open("vehicle.dbc", session.WithMaxEntries(500))
//	if err != nil {
//	    return err
//	}
//	_ = s.RenameMessage(0x640, "VehicleSpeed")
//	_ = s.Undo()
//	_ = s.Redo()
//
// Sessions are single-threaded; a host running several documents creates
// one Session per document.
package session
