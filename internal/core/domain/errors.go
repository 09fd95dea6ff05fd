package domain

import (
	"errors"
	"fmt"
)

// =============================================================================
// Hook Errors
// =============================================================================

var (
	// ErrUnauthenticated is returned when no acting identity is present.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrValidation is returned when a field fails its structural rule.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateValue is returned when a per-owner uniqueness rule is violated.
	ErrDuplicateValue = errors.New("duplicate value")

	// ErrReferenceNotFound is returned when a referenced record cannot be resolved.
	ErrReferenceNotFound = errors.New("referenced record not found")

	// ErrForbidden is returned when the actor does not own the record.
	ErrForbidden = errors.New("forbidden")
)

// ErrorKind names one of the hook error categories.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindUnauthenticated   ErrorKind = "unauthenticated"
	KindValidation        ErrorKind = "validation_error"
	KindDuplicateValue    ErrorKind = "duplicate_value"
	KindReferenceNotFound ErrorKind = "reference_not_found"
	KindForbidden         ErrorKind = "forbidden"
)

// HookError carries the context of a rejected mutation.
type HookError struct {
	Op      string // Operation that rejected the mutation (e.g., "validate", "authorize_delete")
	Entity  Entity
	Field   string // Offending field, validation errors only
	Message string
	Err     error // One of the sentinel errors above
}

func (e *HookError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Entity.Singular(), e.Field, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity.Singular(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// NewHookError creates a new HookError.
func NewHookError(op string, entity Entity, field, message string, err error) *HookError {
	return &HookError{
		Op:      op,
		Entity:  entity,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a HookError for a failed field rule.
func NewValidationError(entity Entity, field, message string) *HookError {
	return NewHookError("validate", entity, field, message, ErrValidation)
}

// KindOf returns the category of a hook error, or KindNone for anything else.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicateValue):
		return KindDuplicateValue
	case errors.Is(err, ErrReferenceNotFound):
		return KindReferenceNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindNone
	}
}

// PublicMessage returns the human-readable message of a hook error.
func PublicMessage(err error) string {
	var he *HookError
	if errors.As(err, &he) {
		if he.Field != "" {
			return he.Field + ": " + he.Message
		}
		return he.Message
	}
	return err.Error()
}
