package errors

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindServerError Kind = iota
	KindBadRequest
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "server_error"
	}
}

// AppError carries a kind and a client-facing message. Err, when set, is the
// internal cause and is never rendered to clients.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StackTrace exposes the stack recorded on the cause, if any, so loggers
// can print where an internal failure started.
func (e *AppError) StackTrace() pkgerrors.StackTrace {
	var tracer interface{ StackTrace() pkgerrors.StackTrace }
	if errors.As(e.Err, &tracer) {
		return tracer.StackTrace()
	}
	return nil
}

// Is matches another AppError with the same kind and message, so wrapped
// copies of a sentinel still satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap attaches an internal cause to a sentinel without changing what the
// client sees.
func Wrap(sentinel *AppError, cause error) *AppError {
	return &AppError{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

// Internal wraps an unexpected failure as a ServerError and records the
// stack where it was classified.
func Internal(cause error) *AppError {
	return &AppError{Kind: KindServerError, Message: ErrInternal.Message, Err: pkgerrors.WithStack(cause)}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindServerError if there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServerError
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrInternal = New(KindServerError, "server error")

	ErrMissingFields        = New(KindBadRequest, "all fields are required")
	ErrIdentifierRequired   = New(KindBadRequest, "full name or mobile number required")
	ErrPasswordMismatch     = New(KindBadRequest, "passwords do not match")
	ErrOldPasswordIncorrect = New(KindBadRequest, "old password is incorrect")
	ErrInvalidInput         = New(KindBadRequest, "invalid input")

	ErrUserAlreadyExists = New(KindConflict, "user already exists")
	ErrUserNotFound      = New(KindNotFound, "user not found")

	ErrInvalidCredentials  = New(KindUnauthorized, "incorrect password")
	ErrRefreshTokenMissing = New(KindUnauthorized, "refresh token missing")
	ErrInvalidRefreshToken = New(KindUnauthorized, "invalid refresh token")
	ErrAccessTokenMissing  = New(KindUnauthorized, "unauthorized request")
	ErrInvalidAccessToken  = New(KindUnauthorized, "invalid access token")

	ErrEventNotFound = New(KindNotFound, "event not found")
	ErrNotEventOwner = New(KindForbidden, "only the creator can delete this event")
)
