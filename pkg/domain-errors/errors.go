// Package domainerrors defines coded errors shared by every ledger module.
//
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them into coded errors so callers can branch on a stable Code instead of
// on error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks malformed or out-of-range input.
	CodeValidation Code = "validation_error"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeForbidden marks a principal acting outside its authority.
	CodeForbidden Code = "forbidden"
	// CodeConflict marks an operation that contradicts the entity's current state.
	CodeConflict Code = "conflict"
	// CodeUnauthorized marks a missing or unknown principal.
	CodeUnauthorized Code = "unauthorized"
	// CodeTimeout marks an operation that ran out of time.
	CodeTimeout Code = "timeout"
	// CodeUnavailable marks a dependency that cannot currently serve requests.
	CodeUnavailable Code = "unavailable"
	// CodeInvariantViolation is raised by model constructors and transitions.
	// Services translate it into CodeValidation or CodeConflict.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks everything else.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. Wrap(nil, ...) returns nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when err
// carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost coded message, falling back to err.Error().
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
