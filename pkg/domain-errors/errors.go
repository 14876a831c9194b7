// Package domainerrors provides code-tagged errors for the care engine.
//
// Services construct these at the point where a business rule is violated so
// the offending values travel with the error. Transport layers translate the
// code to an HTTP status via ToHTTPStatus; nothing in this package depends on
// net/http.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for callers and the transport layer.
type Code string

const (
	// CodeValidation covers invalid domain combinations, e.g. a legal status
	// that is not recognised in the child's jurisdiction.
	CodeValidation Code = "validation_failed"

	// CodeInvalidInput covers malformed external input (bad IDs, bad dates,
	// unparseable enum names) caught at trust boundaries.
	CodeInvalidInput Code = "invalid_input"

	// CodeConflict covers invariant violations such as a second active
	// missing episode or a second active placement for the same child.
	CodeConflict Code = "conflict"

	// CodeInvalidState covers state machine transitions that are not allowed
	// from the entity's current state.
	CodeInvalidState Code = "invalid_state"

	CodeNotFound Code = "not_found"
	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal_error"
)

// Error carries a code, a caller-facing message, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a domain error with a formatted message. Use it to embed the
// offending values so consumers never have to re-derive context.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a domain code to the status the REST surface returns.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeConflict, CodeInvalidState:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
