package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common error conditions.
var (
	// ErrNoRecords indicates that a fetch returned zero records. A run that
	// fetches nothing ends early without rewriting artifacts, so an empty
	// result never clobbers good prior state.
	ErrNoRecords = errors.New("no records fetched")

	// ErrArtifactNotFound indicates that a persisted document does not
	// exist yet. Callers treat this as empty prior state.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that a request was rate limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates that the external source is unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RateLimitError provides details about a rate limit response.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s: retry after %s", e.Source, e.RetryAfter)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// SourceError provides details about an external source failure. It covers
// one fetch scope (a single query or a single month); callers log it and
// continue with zero results for that scope.
type SourceError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *SourceError) Unwrap() error {
	return e.Cause
}

// ArtifactError provides details about a persistence failure for a single
// named document. One artifact's failure does not block writing the others.
type ArtifactError struct {
	Name  string
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s: %s failed: %v", e.Name, e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ArtifactError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(source string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		Source:     source,
		RetryAfter: retryAfter,
	}
}

// NewSourceError creates a new SourceError.
func NewSourceError(source string, statusCode int, message string, cause error) *SourceError {
	return &SourceError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// NewArtifactError creates a new ArtifactError.
func NewArtifactError(name, op string, cause error) *ArtifactError {
	return &ArtifactError{
		Name:  name,
		Op:    op,
		Cause: cause,
	}
}
