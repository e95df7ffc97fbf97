// Package edit defines the closed set of reversible edits on a CAN database.
//
// Each Operation is a self-contained record. Field edits carry both the
// value before and after the edit; AddMessage and DeleteMessage carry the
// full message payload so either direction can be replayed without looking
// anything up; Composite groups several operations into one undo unit.
//
// Operations know nothing about how they are applied. The session package
// binds them to an overlay, and the history package records them.
//
// The set is sealed: only types in this package implement Operation, so a
// type switch over the variants below is exhaustive.
//
//	RenameMessage            ModifyMessageID
//	ModifyMessageComment     ModifyMessageSize
//	ModifyMessageTransmitter ModifyFrameFormat
//	ModifySignal             AddMessage
//	DeleteMessage            Composite
package edit
