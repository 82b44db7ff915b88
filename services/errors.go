package services

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthenticated
	KindInvalidCredential
	KindForbidden
	KindNotFound
	KindConflict
	KindAlreadyExists
	KindInvalidOperation
	KindOutOfRange
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredential:
		return "invalid credential"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindAlreadyExists:
		return "already exists"
	case KindInvalidOperation:
		return "invalid operation"
	case KindOutOfRange:
		return "out of range"
	default:
		return "internal error"
	}
}

// Error is returned by every service operation. Message is safe to show to
// the caller; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInternal          = &Error{Kind: KindInternal}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated}
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrInvalidOperation  = &Error{Kind: KindInvalidOperation}
	ErrOutOfRange        = &Error{Kind: KindOutOfRange}
)

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
