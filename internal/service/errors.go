package service

import "errors"

type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindAccessDenied      ErrorKind = "access_denied"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindValidationFailed  ErrorKind = "validation_failed"
	KindConflict          ErrorKind = "conflict"
)

// Error carries a stable kind so callers can map failures programmatically,
// plus a human-readable message and optional per-field detail.
type Error struct {
	Kind    ErrorKind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf extracts the error kind, if err originated in this package.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func accessDenied(msg string) *Error {
	return &Error{Kind: KindAccessDenied, Message: msg}
}

func invalidTransition(msg string) *Error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Kind: KindValidationFailed, Message: "Validation failed", Fields: f}
}
