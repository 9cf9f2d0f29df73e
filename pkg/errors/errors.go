package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrDirectoryNotFound   = errors.New("corpus directory not found")
	ErrDirectoryUnreadable = errors.New("corpus directory unreadable")
	ErrDocumentRead        = errors.New("document read failed")
	ErrNoMatch             = errors.New("no documents matched")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps err to a response status. An AppError with a non-zero
// StatusCode overrides the sentinel mapping.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNoMatch):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrDirectoryNotFound), errors.Is(err, ErrDirectoryUnreadable), errors.Is(err, ErrDocumentRead):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
