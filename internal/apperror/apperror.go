// Package apperror defines the error kinds surfaced to API clients and their
// HTTP status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthorized
	KindForbidden
	KindNotFoundOrForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindPersistence
	KindStore
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindInvalidArgument:     "invalid_argument",
	KindUnauthorized:        "unauthorized",
	KindForbidden:           "forbidden",
	KindNotFoundOrForbidden: "not_found_or_forbidden",
	KindNotFound:            "not_found",
	KindConflict:            "conflict",
	KindTooManyRequests:     "too_many_requests",
	KindPersistence:         "persistence",
	KindStore:               "store",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status returns the HTTP status code for the kind
func (k Kind) Status() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFoundOrForbidden, KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// FieldError names a request field that failed validation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error with a public message. Cause is logged, never serialized.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status code of the error
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Internal reports whether the message must be hidden from clients
func (e *Error) Internal() bool {
	return e.Status() >= http.StatusInternalServerError
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a malformed or missing input
func InvalidArgument(format string, args ...interface{}) *Error {
	return newf(KindInvalidArgument, format, args...)
}

// InvalidField reports a validation failure on a named field
func InvalidField(field, message string) *Error {
	return &Error{
		Kind:    KindInvalidArgument,
		Message: message,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// Unauthorized reports a missing or invalid credential
func Unauthorized(format string, args ...interface{}) *Error {
	return newf(KindUnauthorized, format, args...)
}

// Forbidden reports an authenticated actor lacking a right
func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

// NotFoundOrForbidden reports an owner-filtered write that matched nothing.
// Callers cannot tell a missing entity from a foreign one.
func NotFoundOrForbidden(format string, args ...interface{}) *Error {
	return newf(KindNotFoundOrForbidden, format, args...)
}

// NotFound reports a missing entity on a read path
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Conflict reports a uniqueness violation
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// TooManyRequests reports a throttled client
func TooManyRequests(format string, args ...interface{}) *Error {
	return newf(KindTooManyRequests, format, args...)
}

// Persistence reports a write that returned no entity
func Persistence(cause error, format string, args ...interface{}) *Error {
	e := newf(KindPersistence, format, args...)
	e.Cause = cause
	return e
}

// Store wraps an unexpected failure of a backing store
func Store(cause error, format string, args ...interface{}) *Error {
	e := newf(KindStore, format, args...)
	e.Cause = cause
	return e
}

// Wrap attaches a cause to e and returns it
func (e *Error) Wrap(cause error) *Error {
	e.Cause = cause
	return e
}

// From converts any error into an *Error. Unclassified errors become Store
// errors so their message is not leaked.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Store(err, "internal server error")
}

// KindOf returns the kind of err, or KindInternal when err is not classified
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
