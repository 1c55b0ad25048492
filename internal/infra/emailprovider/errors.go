package emailprovider

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError represents a 429 response from the provider.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx response other than 429.
type ClientError struct {
	StatusCode int
	Name       string
	Message    string
}

func (e *ClientError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("email provider rejected request (%d %s): %s", e.StatusCode, e.Name, e.Message)
	}
	return fmt.Sprintf("email provider rejected request (%d): %s", e.StatusCode, e.Message)
}

// ServerError represents a 5xx response.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("email provider server error (%d): %s", e.StatusCode, e.Message)
}

// countsAsSuccess tells the circuit breaker which outcomes say nothing about
// provider health. A rejected address is the visitor's problem, not an outage.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, errContactExists) {
		return true
	}
	var clientErr *ClientError
	return errors.As(err, &clientErr)
}

// resultLabel maps an outcome to the metrics label used for provider calls.
func resultLabel(err error) string {
	var (
		rateLimitErr *RateLimitError
		clientErr    *ClientError
		serverErr    *ServerError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, errContactExists):
		return "exists"
	case errors.As(err, &rateLimitErr):
		return "rate_limited"
	case errors.As(err, &clientErr):
		return "client_error"
	case errors.As(err, &serverErr):
		return "server_error"
	default:
		return "transport_error"
	}
}
