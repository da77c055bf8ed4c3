package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable marks transport-level failures: connection refused,
	// DNS, timeouts. No response was obtained; the call may be retried.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized marks a 401/403 answer: the attached credential (or
	// the submitted login) was not accepted.
	ErrUnauthorized = errors.New("unauthorized")
)

// ServerError is a non-2xx answer from the portal, carrying the
// human-readable message from the response body when one was present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match authorization refusals.
func (e *ServerError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// ServerMessage extracts the server-provided message from err, or returns
// fallback when err carries none.
func ServerMessage(err error, fallback string) string {
	var srvErr *ServerError
	if errors.As(err, &srvErr) && srvErr.Message != "" {
		return srvErr.Message
	}
	return fallback
}
