package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyResult marks a successful request that matched nothing.
// It is not a failure; callers render it as a distinct state.
var ErrEmptyResult = errors.New("no results")

// NetworkError is returned when a request fails in transport or the backend
// answers with a non-2xx status.
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is returned before any request is made when a required
// identifier is missing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
