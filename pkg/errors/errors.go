package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors, one per kind, for errors.Is checks.
var (
	// ErrUnknown matches any APIError of KindUnknown.
	ErrUnknown = errors.New("api error")

	// ErrUnauthorized matches any APIError of KindUnauthorized.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden matches any APIError of KindForbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound matches any APIError of KindNotFound.
	ErrNotFound = errors.New("not found")

	// ErrConflict matches any APIError of KindConflict.
	ErrConflict = errors.New("conflict")

	// ErrValidation matches any APIError of KindValidation.
	ErrValidation = errors.New("validation error")

	// ErrRateLimited matches any APIError of KindRateLimited.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer matches any APIError of KindServerError.
	ErrServer = errors.New("server error")

	// ErrNetwork matches any APIError of KindNetwork.
	ErrNetwork = errors.New("network error")
)

var sentinels = map[Kind]error{
	KindUnknown:      ErrUnknown,
	KindUnauthorized: ErrUnauthorized,
	KindForbidden:    ErrForbidden,
	KindNotFound:     ErrNotFound,
	KindConflict:     ErrConflict,
	KindValidation:   ErrValidation,
	KindRateLimited:  ErrRateLimited,
	KindServerError:  ErrServer,
	KindNetwork:      ErrNetwork,
}

// APIError is the only error type the client returns to its callers.
type APIError struct {
	// Kind selects the taxonomy variant.
	Kind Kind

	// Message is the server-provided message, or the kind's default.
	Message string

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int

	// Details holds the decoded response body (or its raw text) when present.
	Details any

	// FieldErrors is populated for KindValidation from the body's "errors" map.
	FieldErrors map[string][]string

	// RetryAfter is set for KindRateLimited when the server sent a parsable
	// Retry-After header.
	RetryAfter *time.Duration

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var msg string
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Code returns the stable error code of the error's kind.
func (e *APIError) Code() string {
	return e.Kind.Code()
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Is reports whether target is the sentinel for this error's kind.
func (e *APIError) Is(target error) bool {
	if s, ok := sentinels[e.Kind]; ok && s == target {
		return true
	}
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.StatusCode == 0 || t.StatusCode == e.StatusCode)
}

// WithCause attaches an underlying error and returns e.
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

// RetryAfterSeconds returns the Retry-After hint in whole seconds.
func (e *APIError) RetryAfterSeconds() (int, bool) {
	if e.RetryAfter == nil {
		return 0, false
	}
	return int(*e.RetryAfter / time.Second), true
}

func newAPIError(kind Kind, message string, status int) *APIError {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &APIError{
		Kind:       kind,
		Message:    message,
		StatusCode: status,
	}
}

// NewUnauthorized creates a KindUnauthorized error.
func NewUnauthorized(message string) *APIError {
	return newAPIError(KindUnauthorized, message, 401)
}

// NewForbidden creates a KindForbidden error.
func NewForbidden(message string) *APIError {
	return newAPIError(KindForbidden, message, 403)
}

// NewNotFound creates a KindNotFound error.
func NewNotFound(message string) *APIError {
	return newAPIError(KindNotFound, message, 404)
}

// NewConflict creates a KindConflict error.
func NewConflict(message string) *APIError {
	return newAPIError(KindConflict, message, 409)
}

// NewValidation creates a KindValidation error with optional field errors.
func NewValidation(message string, fieldErrors map[string][]string) *APIError {
	e := newAPIError(KindValidation, message, 422)
	e.FieldErrors = fieldErrors
	if fieldErrors != nil {
		e.Details = fieldErrors
	}
	return e
}

// NewRateLimited creates a KindRateLimited error. retryAfter may be nil.
func NewRateLimited(message string, retryAfter *time.Duration) *APIError {
	e := newAPIError(KindRateLimited, message, 429)
	e.RetryAfter = retryAfter
	return e
}

// NewServerError creates a KindServerError error for the given 5xx status.
func NewServerError(message string, status int) *APIError {
	if status < 500 {
		status = 500
	}
	return newAPIError(KindServerError, message, status)
}

// NewNetworkError creates a KindNetwork error wrapping the transport failure.
func NewNetworkError(message string, cause error) *APIError {
	e := newAPIError(KindNetwork, message, 0)
	e.cause = cause
	return e
}

// New creates a KindUnknown error carrying the raw status.
func New(status int, message string) *APIError {
	return newAPIError(KindUnknown, message, status)
}
