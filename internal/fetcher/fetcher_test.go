package fetcher_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"StockBoard/internal/fetcher"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

// recordSleep returns a SleepFunc that records requested waits without blocking.
func recordSleep(waits *[]time.Duration) fetcher.SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestFetchText_Success(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "stockboard-test", req.Header.Get("User-Agent"))
			return response(http.StatusOK, "hello"), nil
		}).
		Times(1)

	f := fetcher.New(fetcher.WithHTTPClient(httpClient), fetcher.WithUserAgent("stockboard-test"))
	got, err := f.FetchText(t.Context(), "http://example.test/a")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestFetchText_RetriesRateLimitThenSucceeds(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	gomock.InOrder(
		httpClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusTooManyRequests, "slow down"), nil),
		httpClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, "ok"), nil),
	)

	var waits []time.Duration
	policy := fetcher.DefaultRetryPolicy()
	policy.BaseDelay = 200 * time.Millisecond
	f := fetcher.New(
		fetcher.WithHTTPClient(httpClient),
		fetcher.WithRetryPolicy(policy),
		fetcher.WithSleep(recordSleep(&waits)),
	)

	got, err := f.FetchText(t.Context(), "http://example.test/q")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, waits)
}

func TestFetchText_SecondCallWaitsForBackoff(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	var first, second atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			first.Store(time.Now().UnixNano())
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			second.Store(time.Now().UnixNano())
			_, _ = w.Write([]byte("fine"))
		}
	}))
	defer srv.Close()

	base := 50 * time.Millisecond
	policy := fetcher.DefaultRetryPolicy()
	policy.BaseDelay = base
	f := fetcher.New(fetcher.WithHTTPClient(srv.Client()), fetcher.WithRetryPolicy(policy))

	got, err := f.FetchText(t.Context(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "fine", got)
	assert.EqualValues(t, 2, calls.Load())
	assert.GreaterOrEqual(t, time.Duration(second.Load()-first.Load()), base)
}

func TestFetchText_ServerErrorExhaustsRetries(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(*http.Request) (*http.Response, error) {
			return response(http.StatusInternalServerError, "boom"), nil
		}).
		Times(2)

	var waits []time.Duration
	f := fetcher.New(fetcher.WithHTTPClient(httpClient), fetcher.WithSleep(recordSleep(&waits)))

	_, err := f.FetchText(t.Context(), "http://example.test/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "Internal Server Error")
	assert.Contains(t, err.Error(), "boom")

	var se *fetcher.StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Retryable())
	assert.Equal(t, 2, se.Attempts)
	assert.Equal(t, []time.Duration{fetcher.DefaultBaseDelay}, waits)
}

func TestFetchText_NonRetryableStatusFailsImmediately(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusNotFound, ""), nil).Times(1)

	f := fetcher.New(fetcher.WithHTTPClient(httpClient))
	_, err := f.FetchText(t.Context(), "http://example.test/missing")

	var se *fetcher.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.False(t, se.Retryable())
	assert.Equal(t, "404 Not Found for http://example.test/missing", err.Error())
}

func TestFetchText_NonStandardStatusKeepsServerReason(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).DoAndReturn(func(*http.Request) (*http.Response, error) {
		resp := response(520, "")
		resp.Status = "520 Web Server Returned an Unknown Error"
		return resp, nil
	}).Times(2)

	var waits []time.Duration
	f := fetcher.New(fetcher.WithHTTPClient(httpClient), fetcher.WithSleep(recordSleep(&waits)))
	_, err := f.FetchText(t.Context(), "http://example.test/quote")

	var se *fetcher.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Web Server Returned an Unknown Error", se.Status)
	assert.Equal(t, "520 Web Server Returned an Unknown Error for http://example.test/quote", err.Error())
}

func TestFetchText_UnknownStatusWithoutReason(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(response(499, ""), nil).Times(1)

	f := fetcher.New(fetcher.WithHTTPClient(httpClient))
	_, err := f.FetchText(t.Context(), "http://example.test/quote")

	require.Error(t, err)
	assert.Equal(t, "499 for http://example.test/quote", err.Error())
}

func TestFetchText_LinearBackoffAcrossRetries(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(*http.Request) (*http.Response, error) {
			return response(http.StatusBadGateway, ""), nil
		}).
		Times(4)

	var waits []time.Duration
	policy := fetcher.DefaultRetryPolicy()
	policy.MaxRetries = 3
	policy.BaseDelay = time.Second
	f := fetcher.New(
		fetcher.WithHTTPClient(httpClient),
		fetcher.WithRetryPolicy(policy),
		fetcher.WithSleep(recordSleep(&waits)),
	)

	_, err := f.FetchText(t.Context(), "http://example.test/y")
	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, waits)
}

func TestFetchText_TransportErrorIsWrapped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	dialErr := errors.New("connection refused")
	httpClient.EXPECT().Do(gomock.Any()).Return(nil, dialErr).Times(1)

	f := fetcher.New(fetcher.WithHTTPClient(httpClient))
	_, err := f.FetchText(t.Context(), "http://example.test/z?token=secret")

	var te *fetcher.TransportError
	require.ErrorAs(t, err, &te)
	require.ErrorIs(t, err, dialErr)
	assert.NotContains(t, err.Error(), "secret")
}

func TestFetchText_CanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusServiceUnavailable, ""), nil).Times(1)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	policy := fetcher.DefaultRetryPolicy()
	policy.BaseDelay = time.Hour
	f := fetcher.New(fetcher.WithHTTPClient(httpClient), fetcher.WithRetryPolicy(policy))

	_, err := f.FetchText(ctx, "http://example.test/slow")
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchJSON_DecodeError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, "<html>nope</html>"), nil)

	f := fetcher.New(fetcher.WithHTTPClient(httpClient))
	var out map[string]any
	err := f.FetchJSON(t.Context(), "http://example.test/json", &out)

	var de *fetcher.DecodeError
	require.ErrorAs(t, err, &de)
	var se *fetcher.StatusError
	assert.False(t, errors.As(err, &se))
}

func TestFetchJSON_Decodes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(response(http.StatusOK, `{"c": 101.5, "dp": -0.3}`), nil)

	f := fetcher.New(fetcher.WithHTTPClient(httpClient))
	var out struct {
		C  float64 `json:"c"`
		DP float64 `json:"dp"`
	}
	require.NoError(t, f.FetchJSON(t.Context(), "http://example.test/quote", &out))
	assert.InDelta(t, 101.5, out.C, 1e-9)
	assert.InDelta(t, -0.3, out.DP, 1e-9)
}

func TestRedact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no secrets", "https://stooq.com/q/d/l/?s=aapl.us&i=d", "https://stooq.com/q/d/l/?s=aapl.us&i=d"},
		{"token", "https://finnhub.io/api/v1/quote?symbol=AAPL&token=abc", "https://finnhub.io/api/v1/quote?symbol=AAPL&token=redacted"},
		{"apikey", "https://www.alphavantage.co/query?apikey=k&function=OVERVIEW", "https://www.alphavantage.co/query?apikey=redacted&function=OVERVIEW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fetcher.Redact(tt.in))
		})
	}
}

func TestRetryableStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []int{429, 500, 502, 503, 599} {
		assert.Truef(t, fetcher.RetryableStatus(s), "status %d", s)
	}
	for _, s := range []int{200, 301, 400, 401, 404, 600} {
		assert.Falsef(t, fetcher.RetryableStatus(s), "status %d", s)
	}
}
