package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when a mutation runs without an active session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRemoteUnavailable wraps any failure talking to the store or the auth provider.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrNotFound          = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ValidationError rejects input before any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unavailable wraps err so that errors.Is(err, ErrRemoteUnavailable) holds.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRemoteUnavailable, err)
}
