// Package ratelimit spaces out fetch attempts with a randomized delay so
// the target site sees human-ish request timing instead of a fixed cadence.
package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Limiter enforces a uniformly random gap in [min, max] between the start
// instants of consecutive fetch attempts. It holds no state besides the
// last-release timestamp.
type Limiter struct {
	min time.Duration
	max time.Duration
	rng *rand.Rand

	last time.Time
	now  func() time.Time
}

// New creates a Limiter. If max < min it is raised to min.
func New(min, max time.Duration) *Limiter {
	if max < min {
		max = min
	}
	return &Limiter{
		min: min,
		max: max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// Wait blocks until the sampled delay has elapsed since the previous
// release, then records the new release instant. The first call of a run
// returns immediately. Returns the context error if ctx is canceled while
// waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if l.last.IsZero() {
		l.last = l.now()
		return nil
	}

	wakeup := l.last.Add(l.sample())
	sleep := wakeup.Sub(l.now())
	if sleep > 0 {
		timer := time.NewTimer(sleep)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.last = l.now()
	return nil
}

// sample draws a delay uniformly from [min, max].
func (l *Limiter) sample() time.Duration {
	if l.max == l.min {
		return l.min
	}
	return l.min + time.Duration(l.rng.Int63n(int64(l.max-l.min)+1))
}

// Min returns the configured minimum gap.
func (l *Limiter) Min() time.Duration { return l.min }

// Max returns the configured maximum gap.
func (l *Limiter) Max() time.Duration { return l.max }
