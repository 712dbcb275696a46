// Package exception provides the error types shared by the durable engine.
//
// Failures cross job boundaries only as message text: a child's error is flattened
// with ExtractErrorMessage before it is recorded in its parent's history, and the
// parent observes it again as a *SubJobError.
package exception

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors. Match them with errors.Is.
var (
	// ErrUnknownJobType is returned when a type tag has no registered descriptor.
	ErrUnknownJobType = errors.New("unknown job type")
	// ErrJobNotFound is returned when a job id is neither live nor persisted.
	ErrJobNotFound = errors.New("job not found")
	// ErrCancelled is the failure delivered to a root caller whose job was cancelled.
	ErrCancelled = errors.New("cancelled")
	// ErrUnknownMessage is raised by an actor handler for a message it does not recognize.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrArgumentMismatch is returned when call arguments do not fit a descriptor's declared types.
	ErrArgumentMismatch = errors.New("argument mismatch")
	// ErrEngineStopped is returned by engine operations after Stop.
	ErrEngineStopped = errors.New("engine stopped")
)

// CancelledMessage is the history text recorded for a cancelled child.
const CancelledMessage = "cancelled"

// DurableError is the framework error carrying the module where it was raised.
type DurableError struct {
	// Module is the component that raised the error (e.g. "engine", "store.sql", "serialization").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped cause.
	OriginalErr error
	// StackTrace is captured at construction, for debugging.
	StackTrace string
}

// NewDurableError creates a new DurableError wrapping originalErr (which may be nil).
func NewDurableError(module, message string, originalErr error) *DurableError {
	return &DurableError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
	}
}

// NewDurableErrorf creates a DurableError with a formatted message.
// If the last argument is an error it becomes OriginalErr and is not used for formatting.
//
//	NewDurableErrorf("store.sql", "failed to write job %s", id, err)
func NewDurableErrorf(module, format string, a ...interface{}) *DurableError {
	var originalErr error
	args := a
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	return &DurableError{
		Module:      module,
		Message:     fmt.Sprintf(format, args...),
		OriginalErr: originalErr,
		StackTrace:  captureStack(),
	}
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Error implements the error interface.
func (e *DurableError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Is / errors.As.
func (e *DurableError) Unwrap() error {
	return e.OriginalErr
}

// IsDurableError reports whether err is, or wraps, a *DurableError.
func IsDurableError(err error) bool {
	var de *DurableError
	return errors.As(err, &de)
}

// SubJobError is the failure an orchestration observes when one of its children failed.
// Only the child's message survives; its type and stack do not.
type SubJobError struct {
	Message string
}

// NewSubJobError creates a SubJobError carrying the child's failure message.
func NewSubJobError(message string) *SubJobError {
	return &SubJobError{Message: message}
}

// Error implements the error interface.
func (e *SubJobError) Error() string {
	return "sub-job failed: " + e.Message
}

// Is makes a cancelled child match ErrCancelled.
func (e *SubJobError) Is(target error) bool {
	return target == ErrCancelled && e.Message == CancelledMessage
}

// IsSubJobError reports whether err is, or wraps, a *SubJobError.
func IsSubJobError(err error) bool {
	var se *SubJobError
	return errors.As(err, &se)
}

// ExtractErrorMessage flattens err to the text recorded in history.
// DurableError yields its Message, SubJobError its child's Message, anything else Error().
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *SubJobError
	if errors.As(err, &se) {
		return se.Message
	}
	if de, ok := err.(*DurableError); ok {
		if de.OriginalErr != nil {
			return de.Message + ": " + ExtractErrorMessage(de.OriginalErr)
		}
		return de.Message
	}
	return strings.TrimSpace(err.Error())
}

// PanicError converts a recovered panic value into an error.
func PanicError(module string, recovered interface{}) error {
	if err, ok := recovered.(error); ok {
		return NewDurableError(module, "panic", err)
	}
	return NewDurableErrorf(module, "panic: %v", recovered)
}
