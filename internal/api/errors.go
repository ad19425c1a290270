// internal/api/errors.go
package api

import (
	"errors"
	"fmt"
)

// Error is the single error type returned by every Client operation. Transport
// failures and non-2xx responses both end up here so callers can surface
// Message verbatim.
type Error struct {
	// Op names the client operation, e.g. "create".
	Op string
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Message is the human-readable text: the backend's "error" field, the
	// "HTTP <status>" fallback, or the transport error text.
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an *Error
// carrying a response.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

// statusMessage implements the backend error body convention.
func statusMessage(status int, serverMsg string) string {
	if serverMsg != "" {
		return serverMsg
	}
	return fmt.Sprintf("HTTP %d", status)
}
