package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and retry semantics.
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeConflict       Code = "CONFLICT"
	CodeUnauthorized   Code = "UNAUTHORIZED"
	CodeForbidden      Code = "FORBIDDEN"
	CodeNotFound       Code = "NOT_FOUND"
	CodeDomain         Code = "DOMAIN_RULE"
	CodeInfrastructure Code = "INFRASTRUCTURE"
)

// Error is a coded error. Services return these (directly or wrapped) so the
// HTTP layer can map them to statuses without string matching.
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

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NotFound reports that an entity with the given id does not exist.
func NotFound(entity string, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Invalid reports malformed or out-of-range input.
func Invalid(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// Conflict reports an overlap, duplicate key, or concurrent-update race.
// Callers may retry after re-reading current state.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// Unauthorized reports a missing or invalid identity.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// Forbidden reports that the actor is not permitted to perform the action.
// Not retryable.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// Domain reports a business-rule violation (balance exceeded, terminal
// status, inconsistent amounts).
func Domain(message string) *Error {
	return &Error{Code: CodeDomain, Message: message}
}

// Infrastructure wraps a persistence or collaborator failure. Callers may
// retry with backoff.
func Infrastructure(err error, message string) *Error {
	return &Error{Code: CodeInfrastructure, Message: message, Err: err}
}

// CodeOf returns the code of the nearest *Error in err's chain.
// Unclassified errors count as infrastructure failures.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInfrastructure
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
