package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller. The set is closed: every error
// that reaches a transport resolves to exactly one Kind.
type Kind int

const (
	// KindInternal is the zero value so unclassified errors are never
	// mistaken for a user-facing outcome.
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

//nolint:gochecknoglobals
var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindBadRequest:   "bad_request",
	KindUnauthorized: "unauthorized",
	KindForbidden:    "forbidden",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified error. Message is safe to show to API clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError returns a classified error with a client-safe message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// BadRequestf returns a KindBadRequest error with a formatted message.
func BadRequestf(format string, args ...any) *Error {
	return NewError(KindBadRequest, fmt.Sprintf(format, args...))
}

// AsError finds the first classified error in err's tree.
func AsError(err error) (*Error, bool) {
	var derr *Error
	if errors.As(err, &derr) {
		return derr, true
	}

	return nil, false
}

// KindOf returns the Kind of the first classified error in err's tree,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	if derr, ok := AsError(err); ok {
		return derr.Kind
	}

	return KindInternal
}

var (
	// ErrForbidden is returned when an authenticated user acts on a resource owned by someone else.
	ErrForbidden = NewError(KindForbidden, "Access denied")
	// ErrInvalidID is returned when a path or body id is not a valid identifier.
	ErrInvalidID = NewError(KindBadRequest, "Invalid id format")
	// ErrInvalidBody is returned when a request body cannot be decoded.
	ErrInvalidBody = NewError(KindBadRequest, "Invalid request body")
)
