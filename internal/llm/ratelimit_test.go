package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t  time.Time
	mu sync.Mutex
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestRateLimiter(t *testing.T) {
	t.Run("burst up to capacity", func(t *testing.T) {
		clock := &fakeClock{t: time.Unix(0, 0)}
		rl := newRateLimiter(10)
		rl.now = clock.now
		rl.lastRefill = clock.now()

		for i := 0; i < 10; i++ {
			_, ok := rl.reserve()
			require.True(t, ok, "request %d", i)
		}

		delay, ok := rl.reserve()
		assert.False(t, ok)
		assert.InDelta(t, float64(6*time.Second), float64(delay), float64(time.Millisecond))
	})

	t.Run("refills over time", func(t *testing.T) {
		clock := &fakeClock{t: time.Unix(0, 0)}
		rl := newRateLimiter(60)
		rl.now = clock.now
		rl.lastRefill = clock.now()
		rl.tokens = 0

		_, ok := rl.reserve()
		require.False(t, ok)

		clock.advance(time.Second)
		_, ok = rl.reserve()
		assert.True(t, ok)
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		clock := &fakeClock{t: time.Unix(0, 0)}
		rl := newRateLimiter(2)
		rl.now = clock.now
		rl.lastRefill = clock.now()

		clock.advance(time.Hour)
		for i := 0; i < 2; i++ {
			_, ok := rl.reserve()
			require.True(t, ok)
		}
		_, ok := rl.reserve()
		assert.False(t, ok)
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := rl.wait(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("default rate", func(t *testing.T) {
		rl := newRateLimiter(0)
		assert.InDelta(t, 60.0, rl.capacity, 1e-9)
	})
}
