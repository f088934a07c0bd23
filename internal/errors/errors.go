package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors along the propagation policy:
// structural errors (schema, derivation, storage, config) fail a
// pipeline run immediately, while per-cell parsing errors are absorbed
// into the missing-value channel and never surface as errors at all.
type ErrorType string

const (
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeDerivation ErrorType = "DERIVATION"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err (or anything it wraps) is an AppError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// NewSchemaCollisionError reports two distinct raw headers normalizing
// to the same canonical name. This is fatal before any output is
// written: silently dropping one column would corrupt every consumer
// that addresses columns by canonical name.
func NewSchemaCollisionError(canonical, first, second string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("raw columns %q and %q both normalize to %q", first, second, canonical), nil).
		WithContext("canonical", canonical)
}

// NewDerivationSourceError reports a derived feature referencing a
// column absent from the declared schema. Fatal at pipeline
// construction, never per-row.
func NewDerivationSourceError(target, source string) *AppError {
	return NewAppError(ErrTypeDerivation,
		fmt.Sprintf("derivation %q references unknown column %q", target, source), nil).
		WithContext("target", target).
		WithContext("source", source)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}
