// Package domainerrors defines the coded error type shared by every module.
//
// Services attach a Code so transport layers can map errors to responses
// without string matching, and callers can branch with HasCode. Wrapping keeps
// the original cause reachable through errors.Is/errors.As.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for callers and transports.
type Code string

const (
	// CodeValidation marks required input that is missing or malformed.
	// Always caller-correctable, never retried.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks identifiers or parameters that fail parsing.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a referenced aggregate that does not exist.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks a caller without valid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks a caller lacking permission or ownership.
	CodeForbidden Code = "forbidden"
	// CodeConflict marks a write that lost to a concurrent update or a
	// uniqueness violation.
	CodeConflict Code = "conflict"
	// CodeInvalidTransition marks a lifecycle transition that is not legal
	// from the aggregate's current status. The message carries both the
	// current and the attempted status.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeInvalidState marks an operation on an aggregate whose state is
	// terminal for that operation (e.g. revoking a revoked certificate).
	CodeInvalidState Code = "invalid_state"
	// CodeInvariantViolation marks a constructor or mutation that would
	// break an aggregate invariant.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeBadRequest marks a transport-level request shape problem.
	CodeBadRequest Code = "bad_request"
	// CodeTimeout marks an operation abandoned by deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal marks infrastructure failures. Details stay server-side.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Construct with New or Wrap.
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

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err or any error in its chain carries code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.Err
		domainErr = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal if err is
// not a coded error.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost caller-facing message, or an empty string.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
