// Package apperr defines the error taxonomy shared by services and handlers.
// Every error that crosses the service boundary carries a machine-readable
// Kind and a user-facing message.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindInvalidPath  Kind = "invalid_path"
	KindInvalidName  Kind = "invalid_name"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindStorage      Kind = "storage_error"
)

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrInvalidPath  = &Error{Kind: KindInvalidPath}
	ErrInvalidName  = &Error{Kind: KindInvalidName}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrStorage      = &Error{Kind: KindStorage}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Storage(message string, err error) *Error {
	return Wrap(KindStorage, message, err)
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are treated as storage failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Message returns the user-facing message of err. The wrapped cause of a
// storage error is not exposed.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal storage failure"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != KindStorage && e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// HTTPStatus maps a kind to the status code returned by the JSON API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidPath, KindInvalidName:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
