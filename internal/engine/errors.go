package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups against unknown identifiers.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a concurrent-update conflict that survived the
	// bounded retry loop.
	ErrConflict = errors.New("concurrent update conflict")
)

// ValidationError carries a field-level reason for an immediately rejected
// request. Validation errors are never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a field-level validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
