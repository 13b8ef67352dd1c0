package htmlparse

import (
	"errors"
	"fmt"

	"github.com/yaklabco/html5bridge/pkg/native"
)

// Sentinel errors for categorization via errors.Is.
var (
	// ErrBadEncoding indicates the engine does not support the requested charset.
	ErrBadEncoding = errors.New("unsupported charset")

	// ErrNoMemory indicates the engine ran out of memory. The parser is unusable afterwards.
	ErrNoMemory = errors.New("insufficient memory")

	// ErrBadOption indicates the engine rejected an option or option combination.
	ErrBadOption = errors.New("option rejected")

	// ErrBadParameter indicates the engine rejected an argument.
	ErrBadParameter = errors.New("bad parameter")

	// ErrInvalid indicates the engine rejected its input.
	ErrInvalid = errors.New("invalid input")

	// ErrUnknown indicates an engine failure without a more specific code.
	ErrUnknown = errors.New("unknown engine failure")

	// ErrEncodingChanged indicates the document declared a different charset and
	// automatic restarts are disabled.
	ErrEncodingChanged = errors.New("document encoding changed")

	// ErrCallbackFailed indicates a TreeBuilder method returned an error.
	ErrCallbackFailed = errors.New("tree callback failed")

	// ErrHandleFailed indicates an earlier hard failure left the parser unusable.
	ErrHandleFailed = errors.New("parser handle failed")

	// ErrCompleted indicates input was fed after Complete.
	ErrCompleted = errors.New("input already completed")

	// ErrClosed indicates the parser was used after Close.
	ErrClosed = errors.New("parser closed")

	// ErrProtocolViolation is matched by every *ProtocolViolation.
	ErrProtocolViolation = errors.New("protocol violation")
)

// EngineError is a failure status returned by the engine.
type EngineError struct {
	// Op is the parser operation that received the status.
	Op string
	// Code is the engine status.
	Code native.Error

	kind error
}

func newEngineError(op string, code native.Error) *EngineError {
	return &EngineError{Op: op, Code: code, kind: kindOf(op, code)}
}

func kindOf(op string, code native.Error) error {
	switch code {
	case native.BadEncoding:
		return ErrBadEncoding
	case native.NoMem:
		return ErrNoMemory
	case native.BadParm, native.Invalid:
		if isOptionOp(op) {
			return ErrBadOption
		}
		if code == native.Invalid {
			return ErrInvalid
		}
		return ErrBadParameter
	default:
		return ErrUnknown
	}
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("htmlparse: %s: %s", e.Op, e.Code)
}

func (e *EngineError) Unwrap() error {
	return e.kind
}

// CallbackError wraps an error returned by a TreeBuilder method.
type CallbackError struct {
	// Op is the callback that failed, e.g. "create_element".
	Op string
	// Err is the builder's error.
	Err error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("htmlparse: tree callback %s: %v", e.Op, e.Err)
}

func (e *CallbackError) Unwrap() []error {
	return []error{ErrCallbackFailed, e.Err}
}

// ProtocolViolation is the panic value for misuse of the parser protocol.
type ProtocolViolation struct {
	Op     string
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("htmlparse: protocol violation in %s: %s", e.Op, e.Reason)
}

func (e *ProtocolViolation) Is(target error) bool {
	return target == ErrProtocolViolation
}

func violate(op, reason string) {
	panic(&ProtocolViolation{Op: op, Reason: reason})
}
