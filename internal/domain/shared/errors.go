package shared

import (
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across bounded contexts
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeDataIntegrity = "DATA_INTEGRITY"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// FieldError describes a single rejected field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when user input is rejected.
// It is recoverable: the caller can correct the listed fields and retry.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field error
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field was rejected
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns the error only if it carries field errors.
// Avoids the typed-nil interface trap when returning a *ValidationError as error.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Code returns the error code used by transport layers
func (e *ValidationError) Code() string {
	return CodeValidation
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IntegrityError signals corrupt persisted data. It is never recoverable
// by retrying and must not be masked with a default value.
type IntegrityError struct {
	Resource string
	Value    string
	Reason   string
}

// NewIntegrityError creates a data integrity error
func NewIntegrityError(resource, value, reason string) *IntegrityError {
	return &IntegrityError{Resource: resource, Value: value, Reason: reason}
}

// Code returns the error code used by transport layers
func (e *IntegrityError) Code() string {
	return CodeDataIntegrity
}

// Error implements the error interface
func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation on %s %q: %s", e.Resource, e.Value, e.Reason)
}
