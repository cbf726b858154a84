// Package apperror defines the error kinds raised by the store and service layers.
// Handlers translate a kind into a response status; nothing below the HTTP layer
// knows about status codes.
package apperror

import "errors"

type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindForbidden     Kind = "forbidden"
	KindBadRequest    Kind = "bad_request"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindUnauthorized  Kind = "unauthorized"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrForbidden     = &Error{Kind: KindForbidden}
	ErrBadRequest    = &Error{Kind: KindBadRequest}
	ErrQuotaExceeded = &Error{Kind: KindQuotaExceeded}
	ErrUnauthorized  = &Error{Kind: KindUnauthorized}
	ErrConflict      = &Error{Kind: KindConflict}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperror.ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func QuotaExceeded(msg string) error {
	return &Error{Kind: KindQuotaExceeded, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the client-facing message of err, or fallback for internal errors.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
