package arxiv

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the arXiv client.
var (
	// ErrRateLimited indicates the API kept answering 429 after all retries.
	ErrRateLimited = errors.New("arXiv rate limit exceeded")

	// ErrAPIError indicates a general API error.
	ErrAPIError = errors.New("arXiv API error")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with arXiv")

	// ErrInvalidResponse indicates a body that is not a parseable Atom feed.
	ErrInvalidResponse = errors.New("invalid response from arXiv")
)

// APIError represents a non-success HTTP response from the arXiv API.
type APIError struct {
	StatusCode int
	Message    string
	Category   string // For context in category fetch errors
}

func (e *APIError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("arXiv API error (status %d): %s (category: %s)", e.StatusCode, e.Message, e.Category)
	}
	return fmt.Sprintf("arXiv API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrAPIError) match any APIError.
func (e *APIError) Unwrap() error {
	return ErrAPIError
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRetryable returns true for errors worth retrying later (rate limits, 5xx, network).
func IsRetryable(err error) bool {
	if IsRateLimited(err) || errors.Is(err, ErrNetworkError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
