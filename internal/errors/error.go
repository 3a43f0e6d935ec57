package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategorySetup    Category = "setup"
	CategoryContract Category = "contract"
	CategoryConfig   Category = "config"
	CategoryScenario Category = "scenario"
	CategoryStorage  Category = "storage"
)

// PebbleError is a structured error with a code, the cell it concerns and a
// suggestion for fixing it.
type PebbleError struct {
	// Code is a unique error identifier (e.g., "P004").
	Code string

	// Category is the error type (setup, contract, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Cell is the identity of the cell involved, if any.
	Cell string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *PebbleError) Error() string {
	msg := e.Message
	if e.Cell != "" {
		msg = fmt.Sprintf("%s (cell %q)", msg, e.Cell)
	}
	if e.Wrapped != nil {
		msg = msg + ": " + e.Wrapped.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *PebbleError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a PebbleError with the same code.
func (e *PebbleError) Is(target error) bool {
	t, ok := target.(*PebbleError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithCell records the cell identity the error concerns.
func (e *PebbleError) WithCell(name string) *PebbleError {
	e.Cell = name
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *PebbleError) WithSuggestion(s string) *PebbleError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the detailed explanation of the error.
func (e *PebbleError) WithDetail(d string) *PebbleError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *PebbleError) Wrap(err error) *PebbleError {
	e.Wrapped = err
	return e
}

// New creates a PebbleError from a registered error code.
func New(code string) *PebbleError {
	template, ok := registry[code]
	if !ok {
		return &PebbleError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &PebbleError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new PebbleError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *PebbleError {
	return &PebbleError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a PebbleError.
// Errors that already are PebbleErrors are returned unchanged.
func FromError(err error, code string) *PebbleError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PebbleError); ok {
		return pe
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first PebbleError in err's chain, or "".
func CodeOf(err error) string {
	for err != nil {
		if pe, ok := err.(*PebbleError); ok {
			return pe.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
