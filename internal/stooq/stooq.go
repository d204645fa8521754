// Package stooq reads daily history from stooq.com CSV downloads. The same
// format serves instrument closes and the EUR/USD pair used as FX fallback.
package stooq

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"StockBoard/internal/fetcher"
	"StockBoard/internal/model"
)

// DefaultBaseURL is the public stooq download host.
const DefaultBaseURL = "https://stooq.com"

// closeField is the 0-based column of the close in Date,Open,High,Low,Close,Volume.
const closeField = 4

var (
	// ErrUnexpectedHeader is returned when the first line lacks date and close columns.
	ErrUnexpectedHeader = errors.New("unexpected CSV header")
	// ErrNoCloses is returned when no row carries a usable close.
	ErrNoCloses = errors.New("no close values")

	lineSep  = regexp.MustCompile(`\r?\n`)
	fieldSep = regexp.MustCompile(`[;,]`)
	spaces   = regexp.MustCompile(`\s+`)
)

// ParseCloses returns the close column of every data row, oldest first.
// Rows whose close is not a finite number are skipped.
func ParseCloses(text string) ([]float64, error) {
	rows, err := dataRows(text)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := closeOf(row); ok {
			closes = append(closes, v)
		}
	}
	if len(closes) == 0 {
		return nil, ErrNoCloses
	}
	return closes, nil
}

// ParseLastClose returns the close of the last row only.
func ParseLastClose(text string) (float64, error) {
	rows, err := dataRows(text)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, ErrNoCloses
	}
	v, ok := closeOf(rows[len(rows)-1])
	if !ok {
		return 0, fmt.Errorf("last row %q: %w", rows[len(rows)-1], ErrNoCloses)
	}
	return v, nil
}

func dataRows(text string) ([]string, error) {
	var lines []string
	for _, ln := range lineSep.Split(strings.TrimSpace(text), -1) {
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return nil, ErrUnexpectedHeader
	}
	header := spaces.ReplaceAllString(strings.ToLower(lines[0]), "")
	if !strings.Contains(header, "date") || !strings.Contains(header, "close") {
		return nil, ErrUnexpectedHeader
	}
	return lines[1:], nil
}

func closeOf(row string) (float64, bool) {
	parts := fieldSep.Split(row, -1)
	if len(parts) <= closeField {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[closeField]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Client downloads stooq CSV history.
type Client struct {
	BaseURL string
	Fetcher *fetcher.Fetcher
}

// NewClient creates a stooq client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, f *fetcher.Fetcher) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Fetcher: f}
}

// Name identifies the provider in logs and errors.
func (c *Client) Name() string { return "stooq" }

// DailyCloses returns the daily closes of a US-listed symbol, oldest first.
func (c *Client) DailyCloses(ctx context.Context, symbol string) (model.PriceSeries, error) {
	text, err := c.Fetcher.FetchText(ctx, c.historyURL(strings.ToLower(symbol)+".us"))
	if err != nil {
		return nil, err
	}
	closes, err := ParseCloses(text)
	if err != nil {
		return nil, fmt.Errorf("stooq %s: %w", symbol, err)
	}
	return model.PriceSeries(closes), nil
}

// LatestClose returns the most recent close for a stooq ticker such as "eurusd.fx".
func (c *Client) LatestClose(ctx context.Context, ticker string) (float64, error) {
	text, err := c.Fetcher.FetchText(ctx, c.historyURL(ticker))
	if err != nil {
		return 0, err
	}
	v, err := ParseLastClose(text)
	if err != nil {
		return 0, fmt.Errorf("stooq %s: %w", ticker, err)
	}
	return v, nil
}

func (c *Client) historyURL(ticker string) string {
	q := url.Values{}
	q.Set("s", ticker)
	q.Set("i", "d")
	return c.BaseURL + "/q/d/l/?" + q.Encode()
}
