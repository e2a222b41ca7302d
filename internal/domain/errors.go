package domain

import (
	"errors"
	"fmt"
)

// Domain error sentinels. Lower layers wrap these so handlers can map
// failures to HTTP status codes with errors.Is.
var (
	// ErrNotFound means a named resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput means the request is malformed or incomplete.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable means a required collaborator cannot be reached.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrInternal is an unclassified internal failure.
	ErrInternal = errors.New("internal error")
)

// DomainError carries a stable code and a user-safe message alongside the
// wrapped cause.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error renders the full error for logs, including the wrapped cause.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message safe to show callers, without internals.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource by type and name.
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError reports a request validation failure.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewUnavailableError reports an unreachable collaborator by name.
func NewUnavailableError(collaborator string, err error) error {
	return &DomainError{
		Code:    "UNAVAILABLE",
		Message: fmt.Sprintf("%s is unavailable", collaborator),
		Err:     fmt.Errorf("%w: %v", ErrUnavailable, err),
	}
}

// NewInternalError wraps an unexpected failure without exposing details.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err is a missing-resource error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnavailable reports whether err is a collaborator-unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsInternalError reports whether err is an internal failure.
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}

// ProviderError is a non-success HTTP response from the model provider.
// The raw body is preserved so the orchestration loop can relay it to the
// caller verbatim as a terminal stream error.
type ProviderError struct {
	StatusCode int
	Body       string
}

// Error summarizes the provider failure for logs.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}
