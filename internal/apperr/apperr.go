// Package apperr holds the error kinds shared by the domain packages.
// Handlers switch on the kind, never on the message.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. A Kind is itself an error so callers can write
// errors.Is(err, apperr.NotFound).
type Kind string

const (
	Validation           Kind = "validation"
	NotFound             Kind = "not_found"
	InvalidState         Kind = "invalid_state"
	ReferentialIntegrity Kind = "referential_integrity"
	ConsistencyAnomaly   Kind = "consistency_anomaly"
	Conflict             Kind = "conflict"
	Unauthorized         Kind = "unauthorized"
)

func (k Kind) Error() string { return string(k) }

// Error is a failure with a message that is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err, or "" for errors outside the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}

// Message returns the caller-facing message of err, or "" if err carries none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
