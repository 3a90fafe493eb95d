// Package apperr defines the closed set of failure kinds the API can
// produce. Services return these; handlers convert them into HTTP
// responses exactly once, at the boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindValidation is malformed or rejected input.
	KindValidation Kind = iota
	// KindAuth is a failed or missing authentication.
	KindAuth
	// KindForbidden is an ownership denial on an existing resource.
	KindForbidden
	// KindNotFound is an absent resource.
	KindNotFound
	// KindInternal is a storage or other unexpected failure. Its detail
	// is logged server-side and never surfaced to clients.
	KindInternal
)

// Error carries a kind, a client-safe message and optional per-field
// validation messages. The wrapped err holds internal detail.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Validation returns a validation failure with field-level messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Auth returns an authentication failure with a generic client message.
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden returns an ownership denial.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// NotFound returns an absent-resource failure.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps an unexpected failure. The client sees only message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// anything outside the closed set.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err. Unclassified
// errors get a generic message so internal detail never leaks.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// FieldsOf returns field-level validation messages, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
