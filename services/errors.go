// errors.go - Error taxonomy returned by the service layer

package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when no caller identity is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized is returned when the caller's role does not allow the operation.
	ErrUnauthorized = errors.New("unauthorized access: admin privileges required")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUserOwnsStores blocks deleting a user that still owns stores.
	ErrUserOwnsStores = errors.New("user owns stores")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a uniqueness violation on a human-facing field.
type ConflictError struct {
	Field   string // name | url | email
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsConflict reports whether err is a *ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
