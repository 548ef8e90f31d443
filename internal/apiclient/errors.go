package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNeedsAuth means no token is present or the backend rejected it.
	ErrNeedsAuth = errors.New("authentication required")
	// ErrForbidden means the token is valid but the resource belongs to someone else.
	ErrForbidden = errors.New("access forbidden")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// StatusCode extracts the HTTP status from err, or 0 if err is not a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// AuthError maps 401 to ErrNeedsAuth and 403 to ErrForbidden, leaving other errors untouched.
func AuthError(err error) error {
	switch StatusCode(err) {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", ErrNeedsAuth, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return err
}
