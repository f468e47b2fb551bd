package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing         ErrorType = "PARSING"
	ErrTypeStorage         ErrorType = "STORAGE"
	ErrTypeConfig          ErrorType = "CONFIG"
	ErrTypeSchema          ErrorType = "SCHEMA"
	ErrTypeEmptyDataset    ErrorType = "EMPTY_DATASET"
	ErrTypeInvalidArgument ErrorType = "INVALID_ARGUMENT"
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

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewSchemaError reports a source missing required columns
func NewSchemaError(source string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("source %s does not match the field mapping", source), cause).
		WithContext("source", source)
}

// NewEmptyDatasetError reports an operation that needs at least one record
func NewEmptyDatasetError(op string, cause error) *AppError {
	return NewAppError(ErrTypeEmptyDataset, fmt.Sprintf("no records available for %s", op), cause)
}

// NewInvalidArgumentError reports a rejected caller-supplied value
func NewInvalidArgumentError(name string, cause error) *AppError {
	return NewAppError(ErrTypeInvalidArgument, fmt.Sprintf("invalid %s", name), cause).
		WithContext("argument", name)
}
