package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is a validation error on a single input field, as rendered to API clients.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError is a rejected input. Err is the sentinel callers can match with errors.Is.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldValidationError rejects the input because of one field.
func NewFieldValidationError(err error, field, format string, args ...interface{}) error {
	return NewValidationError(err, FieldError{Field: field, Error: fmt.Sprintf(format, args...)})
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// Unwrap exposes Err to errors.Is and errors.As. errors.Cause stops at the ValidationError.
func (err ValidationError) Unwrap() error {
	return err.Err
}

// FieldMap returns field -> message, nil when no field is involved.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	flds := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		flds[f.Field] = f.Error
	}
	return flds
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
