package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors covering the engine's failure taxonomy. Services wrap
// these; handlers map them to HTTP statuses via HTTPStatus.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrUnsupportedKind = errors.New("unsupported review kind")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAuthRequired    = errors.New("authentication required")
	ErrInternal        = errors.New("internal error")
)

// AppError is a structured application error with a stable machine-readable
// code and HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error for a missing review, target, or kind.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// UnsupportedKind creates a 400 error for a kind absent from the registry.
func UnsupportedKind(kind string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_KIND",
		Message: fmt.Sprintf("review kind %q is not supported", kind),
		Status:  http.StatusBadRequest,
		Err:     ErrUnsupportedKind,
	}
}

// Forbidden creates a 403 error for a failed authorization check.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error for duplicate reviews and duplicate abuse reports.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// RateLimited creates a 429 error for flood-control rejections.
func RateLimited(message string) *AppError {
	return &AppError{
		Code:    "RATE_LIMITED",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     ErrRateLimited,
	}
}

// InvalidInput creates a 400 error for length/enum/required-field violations.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// AuthenticationRequired creates a 401 error.
func AuthenticationRequired() *AppError {
	return &AppError{
		Code:    "AUTHENTICATION_REQUIRED",
		Message: "authentication required",
		Status:  http.StatusUnauthorized,
		Err:     ErrAuthRequired,
	}
}

// Internal creates a 500 error wrapping a storage or collaborator failure.
// The wrapped error is logged but never serialized to callers.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnsupportedKind), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
