package services

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup for a ticket or reading that does not exist.
var ErrNotFound = errors.New("not found")

// ErrModelUnavailable reports that the regression artifact could not be
// loaded. Prediction and alert evaluation are unavailable until it is;
// raw reading ingestion keeps working.
var ErrModelUnavailable = errors.New("regression model unavailable")

// ValidationError rejects malformed input before any external call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteServiceError wraps a failed call to the ticketing provider. Calls
// are never retried; a single failure surfaces directly to the caller.
type RemoteServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("servicenow %s failed: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("servicenow %s failed: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }
