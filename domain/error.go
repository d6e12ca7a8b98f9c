// Package domain defines error types for the catalog.
package domain

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned by storage collaborators when a lookup finds nothing.
// Services translate it into a NotFoundError.
var ErrRecordNotFound = errors.New("record not found")

// InvariantViolationError is returned when an entity rejects a mutation.
// The entity is left unchanged.
type InvariantViolationError struct {
	Entity string
	Field  string
	Reason string
}

// Error implements the error interface for InvariantViolationError
func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invalid %s: field=%s, reason=%s", e.Entity, e.Field, e.Reason)
}

// Is allows proper error type checking with errors.Is()
func (e *InvariantViolationError) Is(target error) bool {
	_, ok := target.(*InvariantViolationError)
	return ok
}

// NotFoundError is returned when a referenced entity does not exist in its store
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface for NotFoundError
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Entity, e.ID)
}

// Is allows proper error type checking with errors.Is()
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// NewInvariantViolation creates a new InvariantViolationError
func NewInvariantViolation(entity, field, reason string) error {
	return &InvariantViolationError{
		Entity: entity,
		Field:  field,
		Reason: reason,
	}
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entity string, id fmt.Stringer) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// IsInvariantViolation checks if an error is an InvariantViolationError
func IsInvariantViolation(err error) bool {
	var ive *InvariantViolationError
	return errors.As(err, &ive)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
