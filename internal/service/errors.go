package service

import (
	"errors"

	"github.com/spec-kit/dealership/internal/repository"
)

var (
	// ErrInvalidCredentials covers unknown email, inactive identity, wrong
	// password and store failures alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = repository.ErrEmailTaken
	ErrLoginThrottled     = errors.New("too many failed login attempts")
	ErrInvalidRole        = errors.New("invalid role")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrSelfModification   = errors.New("cannot change own role or activity")
)

// ValidationError reports unacceptable input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
