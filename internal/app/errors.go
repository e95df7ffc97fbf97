// Package app wires configuration, logging, metrics, the session, the file
// watcher and the script runner into the dbcedit command loop.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrQuit signals that the command loop should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrUnknownCommand indicates a command name the loop does not know.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage indicates a command was given the wrong arguments.
	ErrUsage = errors.New("usage")

	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")
)

func usage(format string) error {
	return fmt.Errorf("%w: %s", ErrUsage, format)
}
