package fetcher

import (
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a single HTTP request, including reading the body.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 1
	// DefaultBaseDelay is the backoff unit between attempts.
	DefaultBaseDelay = 1500 * time.Millisecond
)

// RetryPolicy decides whether a failed response is retried and how long to
// wait before the next attempt.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is passed to Backoff.
	BaseDelay time.Duration
	// Backoff returns the wait before retry number attempt (1-based).
	Backoff func(base time.Duration, attempt int) time.Duration
	// Retryable reports whether a response status may be retried.
	Retryable func(status int) bool
}

// DefaultRetryPolicy retries once on 429 and 5xx with linear backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: DefaultRetries,
		BaseDelay:  DefaultBaseDelay,
		Backoff:    LinearBackoff,
		Retryable:  RetryableStatus,
	}
}

// LinearBackoff waits base × attempt.
func LinearBackoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base * time.Duration(attempt)
}

// RetryableStatus reports rate limiting (429) and server errors (5xx).
func RetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status <= 599)
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	if p.Backoff == nil {
		return LinearBackoff(p.BaseDelay, attempt)
	}
	return p.Backoff(p.BaseDelay, attempt)
}

func (p RetryPolicy) retryable(status int) bool {
	if p.Retryable == nil {
		return RetryableStatus(status)
	}
	return p.Retryable(status)
}
