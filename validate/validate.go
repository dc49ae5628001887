// Package validate defines the optional validation capability a
// configuration type may implement, plus field-level check helpers and
// an error accumulator for reporting multiple violations at once.
package validate

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Validatable is the capability a configuration type implements to opt
// into validation. Types that do not implement it are simply not
// validatable; callers decide whether that is an error.
type Validatable interface {
	Validate(ctx context.Context) error
}

// FieldError describes a single violated rule on one field.
type FieldError struct {
	Field   string
	Message string
	Code    string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	return fmt.Sprintf("validation failed: field %q: %s", e.Field, e.Message)
}

// NewFieldError creates a FieldError with the generic code.
// Use WithCode to attach a more specific one.
func NewFieldError(field, message string) FieldError {
	return FieldError{Field: field, Message: message, Code: CodeGeneric}
}

// WithCode returns a copy of the error carrying the given code.
func (e FieldError) WithCode(code string) FieldError {
	e.Code = code
	return e
}

// Result accumulates field errors and warnings from one or more
// validation passes. The zero value is ready to use and reports valid.
type Result struct {
	Errors   []FieldError
	Warnings []FieldError
}

// AddError records a violation. Errors make the result invalid.
func (r *Result) AddError(err FieldError) {
	r.Errors = append(r.Errors, err)
}

// AddWarning records an advisory finding that does not invalidate the result.
func (r *Result) AddWarning(warn FieldError) {
	r.Warnings = append(r.Warnings, warn)
}

// Merge folds another result into this one, preserving order.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Valid reports whether no errors were recorded. Warnings alone do not
// make a result invalid.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the result as an error when it holds violations, nil otherwise.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r
}

// Error implements the error interface, joining all violations.
func (r *Result) Error() string {
	if len(r.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", describe(r.Errors[0]))
	}
	lines := lo.Map(r.Errors, func(e FieldError, _ int) string {
		return describe(e)
	})
	return fmt.Sprintf("validation failed with %d errors:\n  - %s",
		len(r.Errors), strings.Join(lines, "\n  - "))
}

func describe(e FieldError) string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}
