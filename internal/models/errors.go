package models

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates scheduling and storage failures so callers can
// apply per-kind propagation policy without a type hierarchy.
type ErrorKind string

const (
	// ErrMissingTime indicates a schedule entry without a time of day.
	ErrMissingTime ErrorKind = "missing_time"
	// ErrWrongTimeFormat indicates a time of day not matching strict HH:MM.
	ErrWrongTimeFormat ErrorKind = "wrong_time_format"
	// ErrUnsupportedFormat indicates an unknown timetable file format.
	ErrUnsupportedFormat ErrorKind = "unsupported_format"
	// ErrAlreadyExists indicates an explicit create hit a pre-existing path.
	ErrAlreadyExists ErrorKind = "already_exists"
	// ErrRemoteClient indicates a client-error response from the catalog API.
	ErrRemoteClient ErrorKind = "remote_client_error"
)

// Error is a tagged error carrying a Kind discriminant.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a tagged error with the given kind and message.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError creates a tagged error wrapping an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// IsKind reports whether err (or anything it wraps) is a tagged error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
