package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an API failure so callers can branch on the failure
// mode instead of string-matching server messages.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"   // 400
	KindUnauthorized ErrorKind = "unauthorized" // 401
	KindForbidden    ErrorKind = "forbidden"    // 403
	KindNotFound     ErrorKind = "not_found"    // 404
	KindConflict     ErrorKind = "conflict"     // 409
	KindServer       ErrorKind = "server"       // 5xx
	KindNetwork      ErrorKind = "network"      // transport failure, no response
)

// Error represents a failed API call. Message prefers the server-provided
// error field and falls back to a generic description of the status.
type Error struct {
	Kind       ErrorKind
	StatusCode int    // 0 for network errors
	Message    string // user-displayable
	Err        error  // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	default:
		// The backend only emits the statuses above plus 5xx. Anything else
		// (a 405, a stray 3xx) means the server misbehaved, so it is
		// classified as a server fault rather than given its own kind.
		return KindServer
	}
}

// KindOf returns the ErrorKind of err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
