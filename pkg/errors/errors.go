package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrDuplicateEmail
	ErrInvalidCredentials
	ErrUnknownPatient
	ErrValidationFailed
	ErrStorageFailure
	ErrForbidden
	ErrInternal
)

// Sentinels for errors.Is checks across layers.
var (
	ErrNoRow              = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrBadCredentials     = errors.New("invalid credentials")
	ErrPatientUnknown     = errors.New("unknown patient")
	ErrInvalid            = errors.New("validation failed")
	ErrStorage            = errors.New("storage failure")
	ErrOrphanedAttachment = errors.New("orphaned attachment")
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code to an HTTP status. Consumed by the
// error middleware.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound, ErrUnknownPatient:
		return http.StatusNotFound
	case ErrDuplicateEmail, ErrValidationFailed:
		return http.StatusBadRequest
	case ErrInvalidCredentials:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	wrapped := error(ErrNoRow)
	if err != nil {
		wrapped = fmt.Errorf("%w: %w", ErrNoRow, err)
	}
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     wrapped,
	}
}

func DuplicateEmail(namespace string) *AppError {
	return &AppError{
		Code:    ErrDuplicateEmail,
		Message: "email already registered",
		Err:     fmt.Errorf("%w: namespace %s", ErrEmailTaken, namespace),
	}
}

// InvalidCredentials deliberately carries no detail about whether the
// email existed, to avoid account enumeration.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    ErrInvalidCredentials,
		Message: "invalid email or password",
		Err:     ErrBadCredentials,
	}
}

func UnknownPatient(identifier string) *AppError {
	return &AppError{
		Code:    ErrUnknownPatient,
		Message: "patient not found",
		Err:     fmt.Errorf("%w: %s", ErrPatientUnknown, identifier),
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrValidationFailed,
		Message: message,
		Err:     ErrInvalid,
	}
}

func Storage(op string, err error) *AppError {
	return &AppError{
		Code:    ErrStorageFailure,
		Message: "storage failure",
		Err:     fmt.Errorf("%w: %s: %w", ErrStorage, op, err),
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
		Err:     nil,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// IsNotFound reports whether err is a not-found failure from any layer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoRow) || errors.Is(err, ErrPatientUnknown)
}
