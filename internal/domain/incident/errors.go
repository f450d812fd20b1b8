package incident

import (
	"errors"
	"fmt"
)

// ErrorCode identifies well-known domain error categories. Extraction misses
// are deliberately absent: a missing section in generator output is an empty
// field, never an error.
type ErrorCode string

const (
	ErrCodeValidation  ErrorCode = "VALIDATION_ERROR"
	ErrCodeGenerator   ErrorCode = "GENERATOR_ERROR"
	ErrCodePersistence ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeMissing     ErrorCode = "MISSING_REQUIRED"
	ErrCodeCancelled   ErrorCode = "CANCELLED"
	ErrCodeInternal    ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a typed error enriched with contextual data while
// remaining free from infrastructure dependencies.
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As usage.
func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is comparisons against other DomainError values.
func (e *DomainError) Is(target error) bool {
	var domainErr *DomainError
	if !errors.As(target, &domainErr) {
		return false
	}
	return e.Code == domainErr.Code && e.Message == domainErr.Message
}

// WithContext clones the error with additional contextual metadata.
func (e *DomainError) WithContext(ctx map[string]interface{}) *DomainError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Context: merged,
	}
}

// NewGeneratorError wraps a failure from the text-generation collaborator.
func NewGeneratorError(message string, cause error) *DomainError {
	return &DomainError{Code: ErrCodeGenerator, Message: message, Cause: cause}
}

// NewPersistenceError wraps a failure writing the knowledge document.
func NewPersistenceError(message string, cause error) *DomainError {
	return &DomainError{Code: ErrCodePersistence, Message: message, Cause: cause}
}

func newMissingFieldError(field string) *DomainError {
	return &DomainError{Code: ErrCodeMissing, Message: "missing required field", Context: map[string]interface{}{
		"field": field,
	}}
}
