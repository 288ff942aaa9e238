package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("first call returns immediately", func(t *testing.T) {
		t.Parallel()

		l := New(time.Second, 2*time.Second)

		start := time.Now()
		require.NoError(t, l.Wait(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("spacing between releases is at least min", func(t *testing.T) {
		t.Parallel()

		l := New(50*time.Millisecond, 80*time.Millisecond)
		ctx := context.Background()

		require.NoError(t, l.Wait(ctx))
		prev := time.Now()

		for i := 0; i < 3; i++ {
			require.NoError(t, l.Wait(ctx))
			now := time.Now()
			assert.GreaterOrEqual(t, now.Sub(prev), 50*time.Millisecond)
			prev = now
		}
	})

	t.Run("canceled context aborts the wait", func(t *testing.T) {
		t.Parallel()

		l := New(time.Hour, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		require.NoError(t, l.Wait(ctx)) // first release, no delay

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		err := l.Wait(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("already-canceled context fails without sleeping", func(t *testing.T) {
		t.Parallel()

		l := New(time.Hour, time.Hour)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
	})
}

func TestSample(t *testing.T) {
	t.Parallel()

	t.Run("draws stay within the configured window", func(t *testing.T) {
		t.Parallel()

		l := New(2*time.Second, 5*time.Second)
		for i := 0; i < 1000; i++ {
			d := l.sample()
			assert.GreaterOrEqual(t, d, 2*time.Second)
			assert.LessOrEqual(t, d, 5*time.Second)
		}
	})

	t.Run("degenerate window returns min", func(t *testing.T) {
		t.Parallel()

		l := New(3*time.Second, 3*time.Second)
		assert.Equal(t, 3*time.Second, l.sample())
	})

	t.Run("max below min is raised to min", func(t *testing.T) {
		t.Parallel()

		l := New(4*time.Second, time.Second)
		assert.Equal(t, 4*time.Second, l.Min())
		assert.Equal(t, 4*time.Second, l.Max())
	})
}
