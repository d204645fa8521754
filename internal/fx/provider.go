// Package fx resolves the USD to EUR rate from an ordered list of sources.
package fx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"StockBoard/internal/fetcher"
	"StockBoard/internal/stooq"
)

// Default source locations.
const (
	DefaultExchangeRateHostURL = "https://api.exchangerate.host/latest?base=USD&symbols=EUR"
	DefaultECBURL              = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"
	DefaultStooqPair           = "eurusd.fx"
)

var (
	// ErrInvalidRate is returned for a zero, negative or non-finite rate.
	ErrInvalidRate = errors.New("invalid rate")
	// ErrRateNotFound is returned when a response carries no rate for the currency.
	ErrRateNotFound = errors.New("rate not found")
)

// Provider yields "1 USD = x EUR".
type Provider interface {
	Name() string
	Rate(ctx context.Context) (float64, error)
}

func validate(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRate, v)
	}
	return nil
}

// invert turns a published EUR→USD rate into USD→EUR at full float
// precision; v must already be validated.
func invert(v float64) float64 {
	return 1 / v
}

// ExchangeRateHost reads a JSON rates object quoted against USD.
type ExchangeRateHost struct {
	URL     string
	Fetcher *fetcher.Fetcher
}

// NewExchangeRateHost creates the JSON source; an empty url selects the public endpoint.
func NewExchangeRateHost(url string, f *fetcher.Fetcher) *ExchangeRateHost {
	if url == "" {
		url = DefaultExchangeRateHostURL
	}
	return &ExchangeRateHost{URL: url, Fetcher: f}
}

func (p *ExchangeRateHost) Name() string { return "exchangerate.host" }

// Rate returns rates.EUR unchanged; the response is already USD→EUR.
func (p *ExchangeRateHost) Rate(ctx context.Context) (float64, error) {
	var body struct {
		Rates map[string]*float64 `json:"rates"`
	}
	if err := p.Fetcher.FetchJSON(ctx, p.URL, &body); err != nil {
		return 0, err
	}
	v, ok := body.Rates["EUR"]
	if !ok || v == nil {
		return 0, fmt.Errorf("EUR: %w", ErrRateNotFound)
	}
	if err := validate(*v); err != nil {
		return 0, err
	}
	return *v, nil
}

// ECB reads the daily euro reference rates, published as 1 EUR = x USD.
type ECB struct {
	URL      string
	Currency string
	Fetcher  *fetcher.Fetcher
}

// NewECB creates the XML reference-rate source.
func NewECB(url string, f *fetcher.Fetcher) *ECB {
	if url == "" {
		url = DefaultECBURL
	}
	return &ECB{URL: url, Currency: "USD", Fetcher: f}
}

func (p *ECB) Name() string { return "ECB" }

// Rate returns 1 / published rate.
func (p *ECB) Rate(ctx context.Context) (float64, error) {
	text, err := p.Fetcher.FetchText(ctx, p.URL)
	if err != nil {
		return 0, err
	}
	eurToUSD, err := parseECBRate(text, p.Currency)
	if err != nil {
		return 0, err
	}
	if err := validate(eurToUSD); err != nil {
		return 0, err
	}
	return invert(eurToUSD), nil
}

// parseECBRate finds <Cube currency="USD" rate="1.0812"/> anywhere in the document.
func parseECBRate(text, currency string) (float64, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("%s: %w", currency, ErrRateNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("parse XML: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Cube" {
			continue
		}
		var code, rate string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "currency":
				code = a.Value
			case "rate":
				rate = a.Value
			}
		}
		if !strings.EqualFold(code, currency) {
			continue
		}
		d, err := decimal.NewFromString(strings.TrimSpace(rate))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRate, rate)
		}
		return d.InexactFloat64(), nil
	}
}

// StooqPair reads the last EUR/USD close from stooq, quoted as 1 EUR = x USD.
type StooqPair struct {
	Ticker string
	Client *stooq.Client
}

// NewStooqPair creates the historical-data source; an empty ticker selects eurusd.fx.
func NewStooqPair(ticker string, c *stooq.Client) *StooqPair {
	if ticker == "" {
		ticker = DefaultStooqPair
	}
	return &StooqPair{Ticker: ticker, Client: c}
}

func (p *StooqPair) Name() string { return "stooq" }

// Rate returns 1 / latest close.
func (p *StooqPair) Rate(ctx context.Context) (float64, error) {
	eurToUSD, err := p.Client.LatestClose(ctx, p.Ticker)
	if err != nil {
		return 0, err
	}
	if err := validate(eurToUSD); err != nil {
		return 0, err
	}
	return invert(eurToUSD), nil
}
