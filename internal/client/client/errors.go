package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("invalid request")
)

// APIError is a non-2xx answer from the accounts API. Detail is the
// server's "detail" message when it sent one.
type APIError struct {
	StatusCode int
	Detail     string
	kind       error
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error { return e.kind }
