package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%q %s", e.Field, e.Message)
}

// InputError reports one or more invalid input values.
type InputError struct {
	Message string
	Errors  []FieldError
}

// DefaultInputMessage is the summary used when several fields are invalid.
const DefaultInputMessage = "One or more input exceptions have occurred."

// NewInputError builds an InputError from field errors.
func NewInputError(errs ...FieldError) *InputError {
	return &InputError{Message: DefaultInputMessage, Errors: errs}
}

func (e *InputError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d field errors, first: %s)", e.Message, len(e.Errors), e.Errors[0].Error())
}

// Add appends a field error.
func (e *InputError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any field error was recorded.
func (e *InputError) HasErrors() bool {
	return len(e.Errors) > 0
}
