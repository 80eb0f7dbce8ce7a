// Package shared contains error kinds and error types used across the bot's
// domain and application layers. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds that can be used for error checking with errors.Is().
var (
	// Input errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMalformedUpdate = errors.New("malformed update")
	ErrMissingChat     = errors.New("update has no chat")

	// Resource errors
	ErrNotFound      = errors.New("entity not found")
	ErrAssetNotFound = errors.New("asset not found")

	// State errors
	ErrAlreadyProcessed = errors.New("already processed")
	ErrFeatureDisabled  = errors.New("feature disabled")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")

	// Runtime errors
	ErrPanic = errors.New("handler panicked")
)

// DomainError represents an error with the component and operation that failed.
type DomainError struct {
	Domain  string // e.g. "menu", "dispatch", "assets"
	Op      string // Operation that failed, e.g. "Open", "SendPhoto"
	Kind    error  // Base error kind for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PLATFORM API ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// APIError is a failure reported by the Bot API itself: a numeric error code
// and the platform's description. Code is 0 when the adapter could not
// recover it from the response.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  int
	Err         error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d on %s: %s", e.Code, e.Method, e.Description)
}

// Unwrap returns the client library error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps well-known codes onto base error kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrExternalService:
		return true
	case ErrUnauthorized:
		return e.Code == 401
	case ErrForbidden:
		return e.Code == 403
	case ErrNotFound:
		return e.Code == 404
	case ErrRateLimited:
		return e.Code == 429
	case ErrInvalidInput:
		return e.Code == 400
	}
	return false
}

// AsAPIError extracts an APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
