package carrier

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common aggregation scenarios.
var (
	// ErrUnknownCarrier indicates the requested carrier is not registered.
	ErrUnknownCarrier = errors.New("unknown carrier")

	// ErrMalformedTokenResponse indicates a 2xx token response that was
	// missing the access token field.
	ErrMalformedTokenResponse = errors.New("malformed token response")
)

// ValidationError reports a rate request that failed the declarative
// field constraints. It is surfaced before any adapter is dispatched,
// so the network is never reached.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid rate request: " + strings.Join(e.Fields, "; ")
}

// TransportError is the typed failure for a non-2xx HTTP response or a
// 2xx response whose body could not be decoded. Status and body are
// preserved for diagnostics.
type TransportError struct {
	StatusCode int
	Status     string
	Body       string
	Malformed  bool
}

func (e *TransportError) Error() string {
	if e.Malformed {
		return fmt.Sprintf("transport error: malformed response body (%s)", e.Status)
	}
	return fmt.Sprintf("transport error: %s: %s", e.Status, e.Body)
}

// TokenError indicates a failed client-credentials exchange. The HTTP
// status and raw body are preserved for diagnostics.
type TokenError struct {
	Carrier    string
	StatusCode int
	Body       string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s token acquisition failed: status %d: %s", e.Carrier, e.StatusCode, e.Body)
}

// APIError represents an error reported by a carrier's API.
type APIError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for APIError.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAPIError creates a new APIError.
func NewAPIError(carrier, code, message string) *APIError {
	return &APIError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}
