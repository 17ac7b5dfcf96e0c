package textlens

import (
	"fmt"
	"strconv"
	"time"
)

// APIError represents a non-2xx response from the Textlens API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
	RequestID  string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("textlens: %s (HTTP %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("textlens: HTTP %d: %s", e.StatusCode, e.Message)
}

// GetAPIError extracts an APIError from err if possible.
func GetAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// IsRetryable reports whether the error is worth retrying at the
// transport level. Network errors are retryable; 429, 503 and other
// 5xx responses are retryable; remaining 4xx are not.
func IsRetryable(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return true
	}

	if apiErr.StatusCode == 429 || apiErr.StatusCode == 503 {
		return true
	}
	if apiErr.StatusCode >= 500 {
		return true
	}
	return false
}

// parseRetryAfter parses a Retry-After header value given in seconds.
// HTTP-date values are not supported and yield 0.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
