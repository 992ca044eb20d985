package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTrigger is returned when the trigger class name is empty
	ErrEmptyTrigger = errors.New("trigger class name cannot be empty")

	// ErrEmptyCaptureRoot is returned when the capture root directory is empty
	ErrEmptyCaptureRoot = errors.New("capture root directory cannot be empty")
)

// SessionInitError reports that a capture session could not open its output
// sink. The session stays idle; a later trigger entry may start a fresh one.
type SessionInitError struct {
	ThreadID int64
	Err      error
}

func (e *SessionInitError) Error() string {
	return fmt.Sprintf("failed to initialize capture session on thread %d: %v", e.ThreadID, e.Err)
}

func (e *SessionInitError) Unwrap() error {
	return e.Err
}

// WriteError reports an I/O failure while emitting graph data mid-session.
// The affected session is disabled; the error is never propagated into the
// instrumented program.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write capture file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ProtocolViolationError reports mismatched enter/leave calls, such as more
// exits than entries on an active session.
type ProtocolViolationError struct {
	ThreadID int64
	Reason   string
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("capture protocol violation on thread %d: %s", e.ThreadID, e.Reason)
}
