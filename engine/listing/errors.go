package listing

import (
	"errors"
	"fmt"
)

// Sentinel errors for validation failures.
var (
	ErrMissingMake     = errors.New("missing make")
	ErrYearOutOfRange  = errors.New("year out of range")
	ErrNegativePrice   = errors.New("negative price")
	ErrNegativeMileage = errors.New("negative mileage")
)

// ValidationError wraps a sentinel with the offending field.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
