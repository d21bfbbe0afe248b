package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the handlers.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError indicates invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError indicates a resource was not found
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string   { return e.Message }
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError represents a resource conflict (e.g. duplicate email)
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string   { return e.Message }
func (e *ConflictError) StatusCode() int { return http.StatusConflict }

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// UpstreamError represents a failure reported by the completion provider
// before any delta was forwarded to the caller. Status carries the provider's
// reported HTTP status when one is available, zero otherwise.
//
// Once the first delta has been forwarded this classification no longer
// applies: the relay reports later failures in-band instead.
type UpstreamError struct {
	Status  int
	Message string
}

// NewUpstreamError creates an UpstreamError from a provider-reported status.
func NewUpstreamError(status int, message string) *UpstreamError {
	return &UpstreamError{Status: status, Message: message}
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream provider error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream provider error: %s", e.Message)
}

// StatusCode maps the provider's status onto the response status. Payment and
// rate-limit failures pass through so callers can react to them; everything
// else collapses to a generic 500.
func (e *UpstreamError) StatusCode() int {
	switch e.Status {
	case http.StatusPaymentRequired, http.StatusTooManyRequests:
		return e.Status
	default:
		return http.StatusInternalServerError
	}
}
