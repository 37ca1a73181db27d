package domain

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindMissingInput    ErrorKind = "MissingInput"
	KindInvalidName     ErrorKind = "InvalidName"
	KindUnsupportedType ErrorKind = "UnsupportedType"
	KindPayloadTooLarge ErrorKind = "PayloadTooLarge"
	KindNotFound        ErrorKind = "NotFound"
	KindUnauthorized    ErrorKind = "Unauthorized"
	KindUpstreamFailure ErrorKind = "UpstreamFailure"
	KindNotImplemented  ErrorKind = "NotImplemented"
	KindInternal        ErrorKind = "Internal"
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageServerError          = "Server error"

	ErrUserIDRequired = errors.New("User ID required")
)

// Error carries a kind alongside the underlying sentinel so handlers can pick
// the HTTP status without string matching.
type Error struct {
	Kind    ErrorKind
	Err     error
	Message string
}

func NewError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Err: err, Message: message}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message attached to err, if any.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

func StatusOf(kind ErrorKind) int {
	switch kind {
	case KindMissingInput, KindInvalidName, KindUnsupportedType, KindPayloadTooLarge:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindUpstreamFailure:
		return http.StatusBadGateway
	case KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
