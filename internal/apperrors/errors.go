// Package apperrors defines the error taxonomy surfaced at the HTTP edge.
package apperrors

import (
	"errors"
	"fmt"
)

// AuthError indicates a missing or mismatched webhook secret.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NewAuthError creates an AuthError.
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// ValidationError indicates a schema or required-field failure. Field names
// the exact offending field so callers can fix the right thing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError for a specific field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError indicates a record, prompt, or keyword absent in a
// collaborator. The message enumerates likely causes since the collaborators
// return opaque 404s.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found: check the id, the configured base, and API key permissions", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// LimitExceededError indicates a batch request outside the allowed size.
type LimitExceededError struct {
	Message string
}

func (e *LimitExceededError) Error() string { return e.Message }

// NewLimitExceededError creates a LimitExceededError.
func NewLimitExceededError(message string) *LimitExceededError {
	return &LimitExceededError{Message: message}
}

// UpstreamError wraps a failure from the LLM, SEO API, prompt store, or
// record store that is not otherwise classified.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError wraps err as a failure of the named service.
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
