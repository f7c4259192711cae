// Package aierr defines the programmer-error class shared by every
// configuration pass: a violated precondition that aborts translation
// rather than being reported and skipped — writing to column zero, a
// misaligned clear_range, an unknown wire bundle, an out-of-range shim
// mux index, a block referencing more than one lock.
package aierr

import "fmt"

// ProgrammerError reports a violated precondition. Callers raise it
// with Raise, which panics; a Translator recovers it at the top level
// and reports it as a fatal, aborted translation.
type ProgrammerError struct {
	Msg string
}

func (e *ProgrammerError) Error() string { return "programmer error: " + e.Msg }

// Raise panics with a ProgrammerError built from format and args.
func Raise(format string, args ...any) {
	panic(&ProgrammerError{Msg: fmt.Sprintf(format, args...)})
}
