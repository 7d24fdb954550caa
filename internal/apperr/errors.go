package apperr

import (
	"errors"
	"strings"
)

// Sentinels for the error classes the HTTP layer knows how to render.
// Domain packages wrap or implement these so handlers can switch with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidationError carries every violated field of a rejected candidate, in a stable order.
type ValidationError struct {
	Violations []FieldViolation
}

func NewValidationError(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(e.Violations))

	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(v FieldViolation) {
	e.Violations = append(e.Violations, v)
}

func (e *ValidationError) Empty() bool {
	return len(e.Violations) == 0
}

// OrNil keeps callers from returning a typed nil through the error interface.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// ConflictError is a business-rule rejection, as opposed to a malformed field.
type ConflictError struct {
	Code    string
	Message string
}

func NewConflict(code, message string) *ConflictError {
	return &ConflictError{Code: code, Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Persistence wraps a store failure so the boundary can report it generically.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistenceError{op: op, err: err}
}

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.err}
}
