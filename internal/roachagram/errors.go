package roachagram

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks requests rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistentFailure marks requests that failed on every attempt.
	ErrPersistentFailure = errors.New("persistent network failure")
)

// StatusError is a non-success HTTP response. It is treated as transient.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Body)
}
