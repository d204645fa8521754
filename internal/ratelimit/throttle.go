// Package ratelimit spaces out calls to quota-limited providers.
package ratelimit

import (
	"context"
	"time"

	"StockBoard/internal/fetcher"
)

// DefaultInterval keeps a 5 requests/minute quota with room for the call itself.
const DefaultInterval = 12500 * time.Millisecond

// Throttle delays every call of a batch except the first by a fixed interval.
// Callers must process the batch sequentially for the spacing to hold.
type Throttle struct {
	Interval time.Duration
	Sleep    fetcher.SleepFunc
}

// NewThrottle creates a throttle; a non-positive interval selects DefaultInterval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttle{Interval: interval, Sleep: fetcher.Sleep}
}

// Wait blocks before the call for the item at index in the batch.
// Index 0 never waits.
func (t *Throttle) Wait(ctx context.Context, index int) error {
	if t == nil || index <= 0 || t.Interval <= 0 {
		return nil
	}
	sleep := t.Sleep
	if sleep == nil {
		sleep = fetcher.Sleep
	}
	return sleep(ctx, t.Interval)
}
