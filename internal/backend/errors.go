package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ValidationError reports missing or unusable local input. It is raised
// before any network traffic happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NetworkError reports a transport-level failure: connection refused,
// timeout, DNS failure. The underlying error message is surfaced verbatim.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a timeout, either a context
// deadline or a transport-level timeout from the HTTP client.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ServerError reports a non-2xx response. Message carries the text the
// server put in its error payload, so operators see the backend's own words.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// UnknownError wraps anything that does not fit the taxonomy above.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return "unexpected error: " + e.Err.Error()
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsServer reports whether err is a ServerError.
func IsServer(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
