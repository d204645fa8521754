package calculator

import "StockBoard/internal/model"

// Moving-average windows reported for every instrument.
const (
	Window100 = 100
	Window200 = 200
)

// MovingAverage returns the simple moving average of the last window values
// of series. ok is false when the series is shorter than the window.
func MovingAverage(series []float64, window int) (avg float64, ok bool) {
	if window <= 0 || len(series) < window {
		return 0, false
	}
	sum := 0.0
	for i := len(series) - window; i < len(series); i++ {
		sum += series[i]
	}
	return sum / float64(window), true
}

// SMA100 returns the 100-day simple moving average, or nil when unavailable.
func SMA100(closes model.PriceSeries) *float64 {
	return movingAveragePtr(closes, Window100)
}

// SMA200 returns the 200-day simple moving average, or nil when unavailable.
func SMA200(closes model.PriceSeries) *float64 {
	return movingAveragePtr(closes, Window200)
}

func movingAveragePtr(closes model.PriceSeries, window int) *float64 {
	avg, ok := MovingAverage(closes, window)
	if !ok {
		return nil
	}
	return &avg
}
