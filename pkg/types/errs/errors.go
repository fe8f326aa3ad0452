package errs

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrAlreadySubmitted  = errors.New("form already submitted")
	ErrEmptyInput        = errors.New("no candidate rows in file")
	ErrSchemaMismatch    = errors.New("missing required column")
	ErrValidation        = errors.New("validation failed")
	ErrPersistence       = errors.New("persistence failure")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrUnknownEventType  = errors.New("unknown event type")
)

// SchemaMismatchError names the first required header absent from an import file.
type SchemaMismatchError struct {
	Column string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %q", ErrSchemaMismatch, e.Column)
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Persistence marks err as a store failure while keeping it inspectable.
func Persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
