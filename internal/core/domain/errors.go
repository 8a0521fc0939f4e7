package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error so the transport layer can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindBadRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// FieldError describes a single failed field constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error carried from services to the HTTP layer.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by kind and message, which lets the sentinels
// below be compared with errors.Is after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(details []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}

func Unauthorized(msg string) *Error { return newError(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return newError(KindForbidden, msg) }
func NotFound(msg string) *Error     { return newError(KindNotFound, msg) }
func Conflict(msg string) *Error     { return newError(KindConflict, msg) }
func BadRequest(msg string) *Error   { return newError(KindBadRequest, msg) }

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

var (
	ErrInvalidCredentials = Unauthorized("Invalid credentials")
	ErrInvalidToken       = Unauthorized("Invalid or expired token")
	ErrMissingToken       = Unauthorized("Access denied. No token provided.")
	ErrInsufficientRole   = Forbidden("Insufficient permissions")
	ErrWrongPassword      = BadRequest("Current password is incorrect")
	ErrAssigneeNotFound   = BadRequest("Assigned user not found")

	ErrUserNotFound   = NotFound("User not found")
	ErrClientNotFound = NotFound("Client not found")

	ErrUserExists      = Conflict("Username or email already exists")
	ErrEmployeeIDTaken = Conflict("Employee ID already exists")

	ErrSuperAdminRole       = Forbidden("Cannot change role of super admin")
	ErrSuperAdminDeactivate = Forbidden("Cannot deactivate super admin")
	ErrSuperAdminDelete     = Forbidden("Cannot delete super admin")
)

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
