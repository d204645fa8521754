package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockBoard/internal/calculator"
	"StockBoard/internal/model"
)

// InstrumentError tags a failed aggregation with its symbol.
type InstrumentError struct {
	Symbol string
	Err    error
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e *InstrumentError) Unwrap() error { return e.Err }

// Collector assembles one Record per instrument from its sources.
type Collector struct {
	Quotes  QuoteSource
	History HistorySource
	// Fundamentals is optional; nil disables the overview fetch.
	Fundamentals FundamentalsSource
	// Throttle spaces out fundamentals calls; nil means no delay.
	Throttle Waiter
}

// NewCollector creates a Collector. fundamentals and throttle may be nil.
func NewCollector(quotes QuoteSource, history HistorySource, fundamentals FundamentalsSource, throttle Waiter) *Collector {
	return &Collector{
		Quotes:       quotes,
		History:      history,
		Fundamentals: fundamentals,
		Throttle:     throttle,
	}
}

// Collect fetches quote, history and, when enabled, fundamentals for symbol,
// and converts prices with rate. index is the symbol's position in the batch.
// Quote and history are required; fundamentals failures only leave the
// field empty.
func (c *Collector) Collect(ctx context.Context, symbol string, index int, rate model.Rate) (*model.Record, error) {
	var (
		quote  *model.Quote
		closes model.PriceSeries
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.Quotes.Quote(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetch quote: %w", err)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		s, err := c.History.DailyCloses(gctx, symbol)
		if err != nil {
			return fmt.Errorf("fetch history: %w", err)
		}
		closes = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, &InstrumentError{Symbol: symbol, Err: err}
	}

	if _, ok := quote.Price(); !ok {
		log.Warn().Str("symbol", symbol).Str("provider", c.Quotes.Name()).Msg("quote has no current price")
	}

	fundamentals := c.collectFundamentals(ctx, symbol, index)

	return &model.Record{
		Quote:            quote,
		PriceEUR:         rate.Convert(quote.Current),
		SMA100:           model.Indicator{Value: rate.Convert(calculator.SMA100(closes))},
		SMA200:           model.Indicator{Value: rate.Convert(calculator.SMA200(closes))},
		Fundamentals:     fundamentals,
		CurrencyOriginal: model.CurrencyUSD,
		FX:               model.FxInfo{USDToEUR: rate.Value},
	}, nil
}

func (c *Collector) collectFundamentals(ctx context.Context, symbol string, index int) model.Fundamentals {
	if c.Fundamentals == nil {
		return nil
	}
	if c.Throttle != nil {
		if err := c.Throttle.Wait(ctx, index); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("fundamentals throttle interrupted")
			return nil
		}
	}
	f, err := c.Fundamentals.Overview(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("provider", c.Fundamentals.Name()).Msg("fundamentals unavailable")
		return nil
	}
	return f
}
