package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the backend error taxonomy. Callers should use
// errors.Is to match these values.
var (
	// ErrUnauthorized: the backend rejected the credentials or token (401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation: the backend rejected the request body (400).
	ErrValidation = errors.New("invalid input")

	// ErrUnavailable: the request never produced an HTTP response
	// (connection refused, DNS failure, timeout).
	ErrUnavailable = errors.New("server unavailable")

	// ErrNoSession: an operation that needs a session marker found none.
	// Raised locally, without a network call.
	ErrNoSession = errors.New("no session")
)

// Error is a non-2xx backend response. Message is the server-provided
// message when the body contained one, otherwise empty.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Unwrap maps well-known statuses onto the sentinels so that
// errors.Is(err, ErrUnauthorized) works on a wrapped *Error.
func (e *Error) Unwrap() error {
	switch e.Status {
	case 401, 403:
		return ErrUnauthorized
	case 400:
		return ErrValidation
	}
	return nil
}

// errorBody is the shape of the backend's error payloads.
type errorBody struct {
	Message string `json:"message"`
}
