package collector

import (
	"context"

	"StockBoard/internal/model"
)

// QuoteSource returns the real-time quote of a symbol.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}

// HistorySource returns daily closes of a symbol, oldest first.
type HistorySource interface {
	DailyCloses(ctx context.Context, symbol string) (model.PriceSeries, error)
	Name() string
}

// FundamentalsSource returns the company overview of a symbol.
type FundamentalsSource interface {
	Overview(ctx context.Context, symbol string) (model.Fundamentals, error)
	Name() string
}

// Waiter delays a call according to its position in the batch.
type Waiter interface {
	Wait(ctx context.Context, index int) error
}
