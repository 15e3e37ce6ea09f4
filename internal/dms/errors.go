package dms

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for any request the backend answered
	// with 401. The stored token has already been cleared.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrLoginRequired is returned when an operation needs a session and
	// there is none.
	ErrLoginRequired = errors.New("login required")

	// ErrInvalidCredentials is returned by Session.Login when the backend
	// rejected the username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotFound matches API errors with status 404.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("server returned %d: %s (request %s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, msg)
}

// Is lets errors.Is match APIErrors against the sentinel errors by status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// ProgressFunc receives transfer progress as a percentage between 0 and 100.
// Successive calls never decrease.
type ProgressFunc func(percent int)
