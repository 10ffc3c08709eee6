package apiclient

import (
	"errors"
	"fmt"
)

// ErrMissingBaseURL is returned when a request is attempted before the site
// owner has configured the update server URL. No network call is made.
var ErrMissingBaseURL = errors.New("the update server URL has not been configured")

// APIError is a non-2xx response from the update server. Message carries the
// server's own message when the error body parses as JSON, otherwise a
// generic one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("update server returned %d: %s", e.Status, e.Message)
}

// TransportError is a network-level failure reaching the update server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to reach the update server: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is a 2xx response whose body is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse the response from the update server: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
