package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the application's failure classes. Services wrap these
// via the constructors below; the transport boundary (REST handlers, GraphQL
// resolvers) maps them to status codes with errors.Is and never leaks raw
// internals to the client.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// Authentication / authorization classes.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrAccessDenied       = errors.New("access denied")
)

type AppError struct {
	Err     error  // sentinel class
	Code    string // machine-readable error code, e.g. "ORGANIZER_NOT_FOUND"
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    "VALIDATION_FAILED",
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, name string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s already exists: %s", resource, name),
	}
}

// InvalidCredentials is returned for BOTH an unknown email and a wrong
// password. The message must stay identical across the two cases so a caller
// cannot enumerate registered addresses; the distinction lives only in
// server-side debug logs.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid credentials",
	}
}

// InvalidToken covers malformed, tampered, expired and wrong-type tokens.
func InvalidToken(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidToken,
		Code:    "INVALID_TOKEN",
		Message: message,
	}
}

// PrincipalNotFound means a structurally valid token references a principal
// that no longer exists (deleted between issuance and use).
func PrincipalNotFound(kind, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Code:    strings.ToUpper(kind) + "_NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", kind, id),
	}
}

// Unauthenticated means no usable identity is attached to the request: no
// bearer token, an anonymous identity, or a malformed subject claim.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Code:    "UNAUTHENTICATED",
		Message: message,
	}
}

// AccessDenied means an identity is present but its role does not satisfy the
// operation's policy.
func AccessDenied(message string) *AppError {
	return &AppError{
		Err:     ErrAccessDenied,
		Code:    "ACCESS_DENIED",
		Message: message,
	}
}
