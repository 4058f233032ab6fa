package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNetwork wraps failures where no response was received (dial, reset, timeout).
	ErrNetwork = errors.New("network error")

	// ErrInvalidTransition is returned before any request when the status
	// machine has no transition for the caller's role and the order's status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrExpiredSession marks a stored credential whose exp is in the past.
	ErrExpiredSession = errors.New("session expired")

	// ErrNoSession is returned by actions that need a logged-in user.
	ErrNoSession = errors.New("no active session")
)

// APIError is a response that arrived but reported failure, either through a
// non-2xx status or an envelope with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// ValidationError lists the order fields that block submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}
