package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeValidation    = "VALIDATION"
	CodeChartNotFound = "CHART_NOT_FOUND"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeStorage       = "STORAGE"
	CodeCancelled     = "CANCELLED"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// New returns a *CodedError.
func New(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// Validation is shorthand for a CodeValidation error without a cause.
func Validation(msg string) error {
	return &CodedError{Code: CodeValidation, Message: msg}
}

// Storage wraps a persistence adapter failure.
func Storage(msg string, cause error) error {
	return &CodedError{Code: CodeStorage, Message: msg, Cause: cause}
}

// HasCode reports whether err (or anything it wraps) is a CodedError with code.
func HasCode(err error, code string) bool {
	var coded *CodedError
	if !errors.As(err, &coded) {
		return false
	}
	return coded.Code == code
}
