// Package overlay layers sparse edits on top of an immutable dbc.Database.
//
// The base document is never mutated. Each editable field has its own
// override table keyed by the message's original identifier; a getter
// consults the table first and falls back to the base value otherwise.
// Setting a field back to its original value (or to the empty string for
// text fields) removes the entry, so the tables only ever hold real edits
// and HasModifications is a plain emptiness check.
//
// Messages that do not exist in the base document live in the added set.
// Base messages that were deleted are hidden through the deleted set. An
// identifier is never in both.
//
// MessageView is the read handle callers use to enumerate messages without
// caring whether a message came from the file or was created in the session.
package overlay
