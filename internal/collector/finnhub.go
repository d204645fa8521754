package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"StockBoard/internal/fetcher"
	"StockBoard/internal/model"
)

// DefaultFinnhubURL is the Finnhub REST API root.
const DefaultFinnhubURL = "https://finnhub.io/api/v1"

// Finnhub implements QuoteSource using the Finnhub quote endpoint.
type Finnhub struct {
	BaseURL string
	APIKey  string
	Fetcher *fetcher.Fetcher
}

// NewFinnhub creates a Finnhub client.
func NewFinnhub(baseURL, apiKey string, f *fetcher.Fetcher) *Finnhub {
	if baseURL == "" {
		baseURL = DefaultFinnhubURL
	}
	return &Finnhub{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Fetcher: f}
}

func (c *Finnhub) Name() string { return "finnhub" }

// Quote returns the quote in the instrument's listing currency (USD).
func (c *Finnhub) Quote(ctx context.Context, symbol string) (*model.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", c.APIKey)

	var quote model.Quote
	if err := c.Fetcher.FetchJSON(ctx, c.BaseURL+"/quote?"+q.Encode(), &quote); err != nil {
		return nil, fmt.Errorf("finnhub quote: %w", err)
	}
	return &quote, nil
}
