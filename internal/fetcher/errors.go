package fetcher

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// StatusError is returned for a non-success response that was not retried,
// or that was still failing once the retry budget was spent.
type StatusError struct {
	URL        string
	StatusCode int
	// Status is the reason phrase sent by the server, e.g. "Not Found".
	Status    string
	Body      string
	Attempts  int
	retryable bool
}

func (e *StatusError) Error() string {
	msg := strconv.Itoa(e.StatusCode)
	if e.Status != "" {
		msg += " " + e.Status
	}
	msg += " for " + e.URL
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Retryable reports whether the status was transient (rate limit or server
// error) and the request failed only because retries ran out.
func (e *StatusError) Retryable() bool { return e.retryable }

// TransportError wraps a failure below HTTP: DNS, connection, timeout.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned by FetchJSON when the body is not valid JSON.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var secretParams = []string{"token", "apikey", "api_key"}

// Redact masks credentials in the query string so URLs are safe to log.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, k := range secretParams {
		if q.Has(k) {
			q.Set(k, "redacted")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// reasonPhrase extracts the text after the code in resp.Status, falling
// back to the standard text when the server sent none.
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
