// ABOUTME: Structured API failure reporting.
// ABOUTME: Distinguishes transport failures from HTTP status errors, 401 in particular.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches any *Error carrying HTTP 401 via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// Error describes a failed API call. StatusCode is 0 when the request never
// produced an HTTP response (network or transport failure).
type Error struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	prefix := fmt.Sprintf("%s: %s %s", e.Op, e.Method, e.Path)
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %d: %v", prefix, e.StatusCode, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %d %s: %s", prefix, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	default:
		return fmt.Sprintf("%s: %d %s", prefix, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// IsTransport reports whether the failure happened before any HTTP response.
func (e *Error) IsTransport() bool {
	return e.StatusCode == 0
}

// IsUnauthorized reports whether err is an HTTP 401 from the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode returns the HTTP status of an API error, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the server-provided message of an API error, or "".
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
