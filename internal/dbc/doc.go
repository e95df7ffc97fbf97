// Package dbc holds the immutable base document of a CAN database.
//
// A Document is the parsed, read-only view of a DBC file: its messages
// (identifier, name, size, transmitter) and their ordered signals. Nothing
// in this module mutates a Document after it has been built; edits live in
// the overlay package, which reads a Document through the Database interface.
//
// # Loading
//
//	doc, err := dbc.Load("vehicle.dbc")
//	if err != nil {
//	    return err
//	}
//	msg, ok := doc.Message(0x640)
//
// Load and Parse are thin adapters over go.einride.tech/can/pkg/dbc. Only
// message, signal and message comment definitions are carried over.
package dbc
