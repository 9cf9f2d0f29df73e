package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "no match", err: ErrNoMatch, want: http.StatusNotFound},
		{name: "wrapped invalid input", err: fmt.Errorf("parsing limit: %w", ErrInvalidInput), want: http.StatusBadRequest},
		{name: "timeout", err: ErrTimeout, want: http.StatusGatewayTimeout},
		{name: "document read", err: fmt.Errorf("%w: %w", ErrDocumentRead, fs.ErrPermission), want: http.StatusServiceUnavailable},
		{name: "app error wins", err: New(ErrNoMatch, http.StatusTeapot, "short and stout"), want: http.StatusTeapot},
		{name: "app error without status", err: New(ErrInvalidInput, 0, "bad limit"), want: http.StatusBadRequest},
		{name: "deadline", err: fmt.Errorf("executing: %w", context.DeadlineExceeded), want: http.StatusGatewayTimeout},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrInvalidInput, http.StatusBadRequest, "limit %d out of range", -1)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("errors.Is(%v, ErrInvalidInput) = false, want true", err)
	}
	if got, want := err.Error(), "invalid input: limit -1 out of range"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
