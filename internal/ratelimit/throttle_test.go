package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_Wait(t *testing.T) {
	var waits []time.Duration
	th := &Throttle{
		Interval: 3 * time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		},
	}

	for i := 0; i < 4; i++ {
		require.NoError(t, th.Wait(t.Context(), i))
	}
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 3 * time.Second}, waits)
}

func TestThrottle_DefaultsAndNil(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewThrottle(0).Interval)
	assert.Equal(t, time.Second, NewThrottle(time.Second).Interval)

	var th *Throttle
	assert.NoError(t, th.Wait(t.Context(), 5))
}

func TestThrottle_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	th := NewThrottle(time.Hour)
	start := time.Now()
	err := th.Wait(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, th.Wait(ctx, 0))
}

func TestThrottle_RealSleep(t *testing.T) {
	th := NewThrottle(20 * time.Millisecond)
	start := time.Now()
	require.NoError(t, th.Wait(t.Context(), 1))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
