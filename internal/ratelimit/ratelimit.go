// Package ratelimit paces successive calls to the dictionary service.
//
// A Gate is waited on after every lookup. The default is a fixed pause; the
// token bucket variant enforces the same minimum interval but lets time spent
// inside the lookup count towards it.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

const DefaultInterval = time.Second

const (
	KindFixed  = "fixed"
	KindBucket = "bucket"
)

// Gate blocks until the next call may start.
type Gate interface {
	Wait(ctx context.Context) error
}

// Clock supplies timers so tests can pace without real delay.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock returns the wall clock.
func RealClock() Clock { return realClock{} }

// FixedDelay pauses for the same interval on every Wait, regardless of what
// happened during the call before it.
type FixedDelay struct {
	interval time.Duration
	clock    Clock
}

func NewFixedDelay(interval time.Duration, clock Clock) *FixedDelay {
	if clock == nil {
		clock = RealClock()
	}
	return &FixedDelay{interval: interval, clock: clock}
}

func (g *FixedDelay) Interval() time.Duration { return g.interval }

func (g *FixedDelay) Wait(ctx context.Context) error {
	if g.interval <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.clock.After(g.interval):
		return nil
	}
}

// TokenBucket admits one call per interval with a burst of one. Wait is
// called after a lookup, so the bucket starts empty and the first Wait
// already holds the next lookup back.
type TokenBucket struct {
	limiter *rate.Limiter
}

func NewTokenBucket(interval time.Duration) *TokenBucket {
	l := rate.NewLimiter(rate.Every(interval), 1)
	l.Allow()
	return &TokenBucket{limiter: l}
}

func (g *TokenBucket) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// None never blocks.
type None struct{}

func (None) Wait(ctx context.Context) error { return ctx.Err() }

// New builds the gate named by kind. A non-positive interval disables pacing.
func New(kind string, interval time.Duration) (Gate, error) {
	if interval <= 0 {
		return None{}, nil
	}
	switch kind {
	case "", KindFixed:
		return NewFixedDelay(interval, RealClock()), nil
	case KindBucket:
		return NewTokenBucket(interval), nil
	default:
		return nil, fmt.Errorf("unknown limiter %q (want %s or %s)", kind, KindFixed, KindBucket)
	}
}
