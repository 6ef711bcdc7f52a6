// Package apperr defines the error taxonomy shared by the service core and
// its adapters. Adapters attach a Kind to every failure they surface; the
// transport layer maps kinds to HTTP statuses without ever inspecting the
// underlying error.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	// Internal covers unexpected adapter or decoding infrastructure
	// failures. It is the default for unclassified errors.
	Internal Kind = iota
	// InvalidParameter marks bad pagination bounds, unrecognized sort
	// fields and malformed identifiers. Raised before any store call.
	InvalidParameter
	// NotFound marks a valid lookup with no matching record or object.
	NotFound
	// Decode marks malformed bytes for the declared file format.
	Decode
	// Transient marks connectivity failures against a backing store.
	// Retries, if desired, belong to the caller.
	Transient
)

func (k Kind) String() string {
	switch k {
	case InvalidParameter:
		return "invalid_parameter"
	case NotFound:
		return "not_found"
	case Decode:
		return "decode"
	case Transient:
		return "transient"
	default:
		return "internal"
	}
}

// Error pairs a Kind with a client-safe message and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-safe message of a classified error. For
// unclassified errors it returns an empty string so callers fall back to a
// generic description instead of leaking internal detail.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
