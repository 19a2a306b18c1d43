package domain

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, duplicate pet name).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrPersistence is returned by repo write functions when a transaction could
// not be committed. Nothing from the failed unit of work is applied.
// Handlers should map this to HTTP 500 without exposing the cause.
var ErrPersistence = errors.New("persistence failure")

// Rejection codes carried by FieldError.Code.
const (
	CodeRequired  = "required"
	CodeDuplicate = "duplicate"
	CodeDigits    = "digits"
	CodeUnknown   = "unknown"
	CodeNotFound  = "notFound"
)

// FieldError is a single rejected input field.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError collects every rejected field of one request.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Fields []FieldError
}

// Reject records a rejected field.
func (e *ValidationError) Reject(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

// HasErrors reports whether any field was rejected.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Err returns e when fields were rejected and nil otherwise, so validators can
// end with `return v.Err()`.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
