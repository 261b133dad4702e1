package service

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when a project or task reference does not resolve.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when a project title matches more than one project.
var ErrAmbiguous = errors.New("ambiguous")

// NetworkError means the request never produced a response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ClientError is a 4xx response.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("request failed: %d %s", e.Status, e.Message)
}

// Unauthorized reports whether the server rejected the credentials.
func (e *ClientError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// ServerError is a 5xx response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server error: %d %s", e.Status, e.Message)
}

// ValidationError is a local input error caught before any request is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string { return e.Field + " required" }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Unauthorized()
}

// IsNotFound reports whether err is ErrNotFound or a 404 from the backend.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var ce *ClientError
	return errors.As(err, &ce) && ce.Status == http.StatusNotFound
}
