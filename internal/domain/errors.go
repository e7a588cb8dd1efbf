package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets errors.Is match the typed errors against their sentinels.
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrUnauthenticated is returned before any network I/O when no bearer
	// token is available. Callers must wait for a login, not retry.
	ErrUnauthenticated = errors.New("unauthenticated: no token available")

	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("transport error")

	// ErrFormat matches every *FormatError.
	ErrFormat = errors.New("unexpected response format")

	// ErrNotExpandable is returned when children are requested for a leaf kind.
	ErrNotExpandable = errors.New("node kind is not expandable")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (progression, resource)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// TransportError is a network failure or a non-2xx answer from the upstream API.
// Status is 0 when no HTTP response was received.
type TransportError struct {
	Op     string // e.g. "GET /sequences/by_progression/5"
	Status int
	Body   string // truncated response body, for diagnosis
	Err    error  // underlying network error, if any
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
}

// Unwrap exposes the network error to errors.Is/As (context.Canceled, etc.)
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is maps upstream statuses onto the domain sentinels.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return true
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// StatusCode passes upstream client errors through and reports everything
// else as a bad gateway.
func (e *TransportError) StatusCode() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}

// FormatError means the upstream body did not have the expected shape.
type FormatError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrFormat, e.Err)
}

// Unwrap returns the decode error
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is() to match against ErrFormat
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// StatusCode implements the HTTPError interface
func (e *FormatError) StatusCode() int {
	return http.StatusBadGateway
}
