package util

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation failure with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (got %v)", e.Field, e.Message, e.Value)
}

// Validator accumulates validation errors.
type Validator struct {
	errs []error
}

// Positive records an error when v is not strictly positive.
func Positive[T ~int | ~int64 | ~float64](v *Validator, field string, value T) {
	if value <= 0 {
		v.errs = append(v.errs, &ValidationError{Field: field, Value: value, Message: "must be positive"})
	}
}

// Check records an error with msg when ok is false.
func (v *Validator) Check(ok bool, field string, value any, msg string) {
	if !ok {
		v.errs = append(v.errs, &ValidationError{Field: field, Value: value, Message: msg})
	}
}

// Err returns all recorded errors joined, or nil.
func (v *Validator) Err() error {
	return errors.Join(v.errs...)
}
