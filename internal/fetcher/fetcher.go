// Package fetcher issues GET requests with a retry policy shared by every
// data provider. Providers only build URLs and decode bodies.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 2048

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Fetcher performs GET requests and retries transient failures.
type Fetcher struct {
	client    HTTPClient
	policy    RetryPolicy
	userAgent string
	sleep     SleepFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(f *Fetcher) { f.policy = p }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithSleep replaces the wait used between retries.
func WithSleep(s SleepFunc) Option {
	return func(f *Fetcher) { f.sleep = s }
}

// New creates a Fetcher with the default retry policy and HTTP client.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: NewHTTPClient(DefaultTimeout, ""),
		policy: DefaultRetryPolicy(),
		sleep:  Sleep,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchText returns the body of a successful GET on rawURL.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	safeURL := Redact(rawURL)
	retries := f.policy.MaxRetries
	if retries < 0 {
		retries = 0
	}

	for attempt := 0; ; attempt++ {
		res, err := f.do(ctx, rawURL)
		if err != nil {
			return "", &TransportError{URL: safeURL, Err: err}
		}
		status := res.status
		if status >= 200 && status < 300 {
			return res.body, nil
		}

		transient := f.policy.retryable(status)
		if transient && attempt < retries {
			backoff := f.policy.backoff(attempt + 1)
			log.Warn().
				Str("url", safeURL).
				Int("status", status).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Msg("transient response, retrying")
			if err := f.sleep(ctx, backoff); err != nil {
				return "", fmt.Errorf("wait for retry of %s: %w", safeURL, err)
			}
			continue
		}
		return "", &StatusError{
			URL:        safeURL,
			StatusCode: status,
			Status:     res.reason,
			Body:       strings.TrimSpace(res.body),
			Attempts:   attempt + 1,
			retryable:  transient,
		}
	}
}

// FetchJSON fetches rawURL and decodes the body into out.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, out any) error {
	text, err := f.FetchText(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return &DecodeError{URL: Redact(rawURL), Err: err}
	}
	return nil
}

type result struct {
	body   string
	status int
	reason string
}

func (f *Fetcher) do(ctx context.Context, rawURL string) (result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return result{}, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return result{}, err
	}
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r = io.LimitReader(resp.Body, maxErrorBody)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return result{}, fmt.Errorf("read body: %w", err)
		}
		// The status alone is enough to report the failure.
		data = nil
	}
	return result{body: string(data), status: resp.StatusCode, reason: reasonPhrase(resp)}, nil
}

// Sleep waits for d, returning early with ctx.Err() if ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
