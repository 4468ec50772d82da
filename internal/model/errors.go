package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Address errors.
var (
	// ErrInvalidAddress is returned when an address has an empty subfield
	// or cannot be decoded from its pipe-delimited form.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrAddressIndex is returned when removing an address that does not exist.
	ErrAddressIndex = errors.New("address index out of range")
)

// Configuration errors.
var (
	// ErrConfigIncomplete is returned when a check is requested before at
	// least one home address and an alert email are configured.
	ErrConfigIncomplete = errors.New("configuration incomplete")
)

// IncompleteConfigError lists what a configuration lacks before a check
// can run. It matches ErrConfigIncomplete with errors.Is.
type IncompleteConfigError struct {
	Missing []string
}

// Error implements error.
func (e *IncompleteConfigError) Error() string {
	if len(e.Missing) == 0 {
		return ErrConfigIncomplete.Error()
	}
	return fmt.Sprintf("%s: missing %s", ErrConfigIncomplete, strings.Join(e.Missing, " and "))
}

// Unwrap returns ErrConfigIncomplete.
func (e *IncompleteConfigError) Unwrap() error {
	return ErrConfigIncomplete
}

// Configuration save errors. Both leave stored configuration unchanged and
// both can be retried by the user.
var (
	// ErrValidationRejected is returned when the service rejects a configuration.
	ErrValidationRejected = errors.New("configuration rejected by server")
	// ErrNetworkUnavailable is returned when the service cannot be reached.
	ErrNetworkUnavailable = errors.New("network unavailable")
)

// Location errors.
var (
	// ErrPermissionDenied is returned when the user or platform refuses access to the position.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrPositionUnavailable is returned when no position could be determined.
	ErrPositionUnavailable = errors.New("position unavailable")
	// ErrLocationTimeout is returned when no position was obtained in time.
	ErrLocationTimeout = errors.New("location request timed out")
	// ErrLocationUnsupported is returned when no geolocation source is available.
	ErrLocationUnsupported = errors.New("geolocation not supported")
)

// Check errors.
var (
	// ErrMalformedResponse is returned when a 2xx response body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrRequestTimeout is returned when the remote call exceeds the client timeout.
	// It is always wrapped together with ErrNetworkUnavailable.
	ErrRequestTimeout = errors.New("request timed out")
)

// HTTPError is a non-2xx response from the service.
type HTTPError struct {
	StatusCode int
	StatusText string
	// Message is the "error" field of the response body, if any.
	Message string
}

// NewHTTPError creates an HTTPError for a status code and an optional body message.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		StatusText: http.StatusText(statusCode),
		Message:    message,
	}
}

// Error returns the server message verbatim when present,
// else "HTTP <status>: <statusText>".
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// IsNetworkError reports whether err belongs to the network class
// (unreachable service or timeout).
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable) || errors.Is(err, ErrRequestTimeout)
}

// IsLocationError reports whether err is one of the location errors.
func IsLocationError(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrPositionUnavailable) ||
		errors.Is(err, ErrLocationTimeout) ||
		errors.Is(err, ErrLocationUnsupported)
}
