package collector

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"StockBoard/internal/fetcher"
	"StockBoard/internal/model"
)

// DefaultAlphaVantageURL is the Alpha Vantage API host.
const DefaultAlphaVantageURL = "https://www.alphavantage.co"

// overviewMarker must be present for an OVERVIEW response to be meaningful.
// Rate-limit notices and unknown symbols come back as 200 without it.
const overviewMarker = "PERatio"

// ErrNoFundamentals is returned when the overview response lacks the expected fields.
var ErrNoFundamentals = errors.New("no fundamentals in response")

// AlphaVantage implements FundamentalsSource using the OVERVIEW function.
type AlphaVantage struct {
	BaseURL string
	APIKey  string
	Fetcher *fetcher.Fetcher
}

// NewAlphaVantage creates an Alpha Vantage client.
func NewAlphaVantage(baseURL, apiKey string, f *fetcher.Fetcher) *AlphaVantage {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	return &AlphaVantage{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Fetcher: f}
}

func (c *AlphaVantage) Name() string { return "alphavantage" }

// Overview returns the company overview (Name, PERatio, Currency, ...).
func (c *AlphaVantage) Overview(ctx context.Context, symbol string) (model.Fundamentals, error) {
	q := url.Values{}
	q.Set("function", "OVERVIEW")
	q.Set("symbol", symbol)
	q.Set("apikey", c.APIKey)

	var out model.Fundamentals
	if err := c.Fetcher.FetchJSON(ctx, c.BaseURL+"/query?"+q.Encode(), &out); err != nil {
		return nil, fmt.Errorf("alphavantage overview: %w", err)
	}
	if _, ok := out[overviewMarker]; !ok {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, ErrNoFundamentals)
	}
	return out, nil
}
