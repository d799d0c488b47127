// Package shared contains common domain errors used across all domain
// packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base error kinds that can be used for error checking with errors.Is().
var (
	// ErrAuthFailure covers bad credentials and expired or invalid tokens.
	// Recovered locally by clearing the session; never fatal.
	ErrAuthFailure = errors.New("authentication failed")

	// ErrNetworkFailure covers an unreachable backend or a timeout.
	ErrNetworkFailure = errors.New("network failure")

	// ErrPartialData is reported when one of the parallel dashboard
	// fetches fails. The whole dashboard goes to the error state.
	ErrPartialData = errors.New("dashboard data incomplete")

	// ErrMalformedResponse is reported when a response body has an
	// unexpected shape. Handled like a network failure.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrExternalService is the kind for non-auth backend error statuses.
	ErrExternalService = errors.New("external service error")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrNotFound is returned by stores when a key does not exist.
	ErrNotFound = errors.New("not found")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "dashboard", "gateway"
	Op      string // Operation that failed, e.g., "Login", "Load"
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

// Is implements errors.Is() matching against both Kind and Err.
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

// Session domain errors
var (
	ErrEmptyEmail    = NewDomainError("session", "Validate", ErrEmptyValue, "email is required")
	ErrEmptyPassword = NewDomainError("session", "Validate", ErrEmptyValue, "password is required")
	ErrEmptyToken    = NewDomainError("session", "Set", ErrEmptyValue, "token is required")
	ErrNilUser       = NewDomainError("session", "Set", ErrInvalidInput, "user is required")
)

// IsAuthFailure reports whether err is an authentication failure.
func IsAuthFailure(err error) bool { return errors.Is(err, ErrAuthFailure) }

// IsNetworkFailure reports whether err should be presented as a network
// failure. Malformed responses are treated the same way.
func IsNetworkFailure(err error) bool {
	return errors.Is(err, ErrNetworkFailure) || errors.Is(err, ErrMalformedResponse)
}

// detailer is implemented by errors carrying a server-provided message.
type detailer interface {
	ServerDetail() string
}

// DetailOf returns the server-provided message inside err, or "" when
// there is none.
func DetailOf(err error) string {
	var d detailer
	if errors.As(err, &d) {
		return d.ServerDetail()
	}
	return ""
}
