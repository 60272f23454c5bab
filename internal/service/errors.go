package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when no authenticated user is present or the
	// user does not own the resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientTokens is returned when the user's balance cannot cover
	// the operation cost.
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrSendInFlight is returned when a chat already has a send in progress.
	ErrSendInFlight = errors.New("send already in progress")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
