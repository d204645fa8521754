package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		window int
		want   float64
		ok     bool
	}{
		{"empty", nil, 3, 0, false},
		{"shorter than window", []float64{1, 2}, 3, 0, false},
		{"exact length", []float64{1, 2, 3}, 3, 2, true},
		{"uses tail only", []float64{100, 1, 2, 3}, 3, 2, true},
		{"window of one", []float64{4, 5, 6}, 1, 6, true},
		{"zero window", []float64{1, 2, 3}, 0, 0, false},
		{"negative window", []float64{1, 2, 3}, -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MovingAverage(tt.series, tt.window)
			require.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestMovingAverage_MatchesMeanOfTail(t *testing.T) {
	s := series(250, func(i int) float64 { return float64(i) * 1.5 })
	for _, w := range []int{1, 7, 100, 200, 250, 251} {
		got, ok := MovingAverage(s, w)
		if w > len(s) {
			assert.False(t, ok, "window %d", w)
			continue
		}
		require.True(t, ok, "window %d", w)
		sum := 0.0
		for _, v := range s[len(s)-w:] {
			sum += v
		}
		assert.InDelta(t, sum/float64(w), got, 1e-9, "window %d", w)
	}
}

func TestSMA100AndSMA200(t *testing.T) {
	closes := series(150, func(int) float64 { return 10 })

	sma100 := SMA100(closes)
	require.NotNil(t, sma100)
	assert.InDelta(t, 10.0, *sma100, 1e-12)
	assert.Nil(t, SMA200(closes))
}
