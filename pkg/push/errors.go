package push

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a push failure so the caller can decide its own
// retry/backoff policy. No transport retries internally.
type ErrorKind string

const (
	// KindConfiguration marks missing or invalid credential fields,
	// detected at construction time. The transport cannot be used until
	// reconfigured.
	KindConfiguration ErrorKind = "configuration"
	// KindInvalidArgument marks a message that did not specify valid
	// addressing. Recoverable by fixing the input.
	KindInvalidArgument ErrorKind = "invalid_argument"
	// KindAuth marks a credential rejected by the identity provider during
	// token issuance. Likely persistent until credentials are fixed.
	KindAuth ErrorKind = "auth"
	// KindNetwork marks a transport-level failure reaching the identity
	// provider or the messaging endpoint. Transient.
	KindNetwork ErrorKind = "network"
	// KindProvider marks a message the endpoint accepted but rejected or
	// failed. Detail carries the raw provider-supplied string.
	KindProvider ErrorKind = "provider"
)

// Error is a classified push failure. Detail preserves the originating
// provider or transport message.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Detail != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error with a formatted detail string.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error, keeping it unwrappable.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the classification of err, or the empty kind when err is
// not a push error.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
