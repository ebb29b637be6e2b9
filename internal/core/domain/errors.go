package domain

import "errors"

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can map it to a status code with errors.Is.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrPersistence    = errors.New("persistence error")
	ErrUnavailable    = errors.New("unavailable")
)

// Error is a domain failure with a message that is safe to show to callers.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the kind so errors.Is(err, ErrConflict) works.
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func Validation(msg string) error     { return newError(ErrValidation, msg) }
func Authentication(msg string) error { return newError(ErrAuthentication, msg) }
func Unauthorized(msg string) error   { return newError(ErrUnauthorized, msg) }
func Forbidden(msg string) error      { return newError(ErrForbidden, msg) }
func NotFound(msg string) error       { return newError(ErrNotFound, msg) }
func Conflict(msg string) error       { return newError(ErrConflict, msg) }
func Persistence(msg string) error    { return newError(ErrPersistence, msg) }
func Unavailable(msg string) error    { return newError(ErrUnavailable, msg) }

// Store-level sentinels. They carry a kind as well, so a store error that leaks
// to the boundary unchanged still renders with a sensible status.
var (
	ErrAccountNotFound = newError(ErrNotFound, "account not found")
	ErrRequestNotFound = newError(ErrNotFound, "request not found")
	ErrEmailTaken      = newError(ErrConflict, "User with this email already exists")
)
