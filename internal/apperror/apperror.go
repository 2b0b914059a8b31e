// Package apperror defines the typed errors returned by the recipe core.
// Handlers translate the kind sentinels into transport status codes.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)

// AppError carries a kind sentinel plus the human readable rejection reason.
type AppError struct {
	Err     error
	Message string
	Field   string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Validation returns an AppError for rejected input.
func Validation(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

// Conflict returns an AppError for a state that already holds or is not allowed.
func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// NotFound returns an AppError for a missing resource.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

// Kind reports which sentinel err wraps, or nil for untyped errors.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrForbidden} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
