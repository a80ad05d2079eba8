package shared

import (
	"errors"
	"fmt"
)

// ErrorKind groups domain errors into the categories the transport layer maps
// to status codes
type ErrorKind string

const (
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindConflict        ErrorKind = "CONFLICT"
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindInvalidState    ErrorKind = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind `json:"-"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError with the same code, so sentinel values work
// with errors.Is after being wrapped or copied.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithCause returns a copy of e that wraps cause
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

func NewConflictError(code, message string) *DomainError {
	return NewDomainError(KindConflict, code, message)
}

func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

func NewInvalidStateError(code, message string) *DomainError {
	return NewDomainError(KindInvalidState, code, message)
}

// Common domain errors
var (
	ErrNotFound        = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrConflict        = NewConflictError("CONFLICT", "Operation conflicts with existing data")
	ErrInvalidInput    = NewValidationError("VALIDATION_ERROR", "Invalid input provided")
	ErrUnauthenticated = NewDomainError(KindUnauthenticated, "UNAUTHENTICATED", "Authentication required")
	ErrInvalidState    = NewInvalidStateError("INVALID_STATE", "Operation not allowed in current state")
	ErrStaleVersion    = NewConflictError("CONCURRENCY_CONFLICT", "Resource was modified by another request")
)

// KindOf returns the kind of the first DomainError in err's chain, or "" when
// there is none
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
