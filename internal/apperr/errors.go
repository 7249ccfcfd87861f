// Package apperr defines the tagged error type shared by services and handlers.
// Callers branch on the Kind instead of inspecting message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation covers bad or missing input.
	KindValidation
	// KindNotFound covers absent resources and resources owned by someone
	// else; both look identical to the caller.
	KindNotFound
	// KindInvalidState covers operations disallowed by the session status.
	KindInvalidState
	// KindUpstreamUnavailable is the soft QA failure: absorbed by the
	// session engine, surfaced only on the direct QA endpoint.
	KindUpstreamUnavailable
	// KindUpstreamFailure is the hard transcription failure.
	KindUpstreamFailure
	// KindPersistence covers storage errors.
	KindPersistence
)

// Error carries a kind, a message key for the localized response envelope and
// an optional human-readable detail passed through to the client.
type Error struct {
	Kind       Kind
	MessageKey string
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.MessageKey, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.MessageKey, e.Detail)
	}
	return e.MessageKey
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a new Error.
func E(kind Kind, messageKey, detail string) *Error {
	return &Error{Kind: kind, MessageKey: messageKey, Detail: detail}
}

// Wrap builds an Error around an underlying cause.
func Wrap(kind Kind, messageKey string, err error) *Error {
	return &Error{Kind: kind, MessageKey: messageKey, Err: err}
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// MessageKeyOf returns the envelope message key for err, falling back to
// "server_error" for untagged errors.
func MessageKeyOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.MessageKey
	}
	return "server_error"
}

// DetailOf returns the client-visible detail for err, if any.
func DetailOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}
