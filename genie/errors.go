package genie

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrUserNotFound is returned by GetUser when the directory has no such user.
var ErrUserNotFound = errors.New("user not found")

// APIError is returned for HTTP responses that are not successful.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	return fmt.Sprintf("%v %v returned status %d: %v", e.Method, e.Path, e.StatusCode, body)
}

// Retryable returns true for rate limiting and server side errors.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// IsStatus returns true if err is an *APIError with the supplied HTTP status code.
func IsStatus(err error, statusCode int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == statusCode
}
