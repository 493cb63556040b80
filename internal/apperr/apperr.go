// Package apperr classifies the failures the sync engine reports to its
// callers. Messages are stable strings suitable for showing to a user.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a failure category.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindTransport covers network failures, timeouts and cancellation.
	KindTransport
	// KindProtocol covers malformed or unexpected remote responses.
	KindProtocol
	// KindPrecondition covers operations invoked in the wrong state.
	KindPrecondition
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindPrecondition:
		return "precondition"
	default:
		return "unknown"
	}
}

// Error is a classified failure with an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport wraps a network level failure.
func Transport(message string, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}

// Protocol reports a response that could not be understood.
func Protocol(format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

// Precondition reports an operation that was refused before doing any I/O.
func Precondition(message string) *Error {
	return &Error{Kind: KindPrecondition, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user facing message for err. Unclassified errors fall
// back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
