// Package ratelimit throttles outbound generation requests by count and
// estimated cost over a trailing time window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentzero/logging"
)

// ErrCostExceedsLimit is returned when a single request costs more than the
// per-window maximum and could therefore never be admitted.
var ErrCostExceedsLimit = errors.New("request cost exceeds per-window maximum")

// Options configures a Limiter.
type Options struct {
	// MaxRequests caps admitted requests per window. Zero disables the cap.
	MaxRequests int
	// MaxCost caps the summed cost of admitted requests per window. Zero
	// disables the cap.
	MaxCost int
	// Window is the trailing window length.
	Window time.Duration
	// Now and Sleep are injectable for tests. Sleep must return early with
	// the context error when ctx is cancelled.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	// Logger receives wait diagnostics.
	Logger logging.Logger
}

type entry struct {
	at   time.Time
	cost int
}

// Limiter admits requests while both caps hold within the trailing window.
//
// A single Limiter is usually shared by every agent of a process so that the
// whole delegation tree stays within one provider quota. Wait is safe for
// concurrent use.
type Limiter struct {
	opts    Options
	mu      sync.Mutex
	entries []entry // admission order, oldest first
}

// New creates a Limiter with the given caps. Defaults: 30 requests and 80000
// cost units per minute.
func New(optFns ...func(o *Options)) *Limiter {
	opts := Options{
		MaxRequests: 30,
		MaxCost:     80000,
		Window:      time.Minute,
		Now:         time.Now,
		Sleep:       sleepContext,
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Limiter{opts: opts}
}

// Wait blocks until a request of the given cost can be admitted without
// exceeding either cap, records it and returns. It fails fast with
// ErrCostExceedsLimit when cost alone is over MaxCost.
func (l *Limiter) Wait(ctx context.Context, cost int) error {
	if cost < 0 {
		cost = 0
	}

	if l.opts.MaxCost > 0 && cost > l.opts.MaxCost {
		return fmt.Errorf("%w: cost %d, max %d per %s", ErrCostExceedsLimit, cost, l.opts.MaxCost, l.opts.Window)
	}

	start := l.opts.Now()

	for {
		delay, admitted := l.tryAdmit(cost)
		if admitted {
			logging.LogRateLimitWait(l.opts.Logger, cost, l.opts.Now().Sub(start))
			return nil
		}

		l.opts.Logger.Debug("ratelimit.wait", "cost", cost, "delay", delay)

		if err := l.opts.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// tryAdmit prunes expired entries and either records the request or returns
// how long to sleep until the oldest entry leaves the window.
func (l *Limiter) tryAdmit(cost int) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.opts.Now()
	l.prune(now)

	count, total := len(l.entries), 0
	for _, e := range l.entries {
		total += e.cost
	}

	overCount := l.opts.MaxRequests > 0 && count+1 > l.opts.MaxRequests
	overCost := l.opts.MaxCost > 0 && total+cost > l.opts.MaxCost

	if !overCount && !overCost {
		l.entries = append(l.entries, entry{at: now, cost: cost})
		return 0, true
	}

	delay := l.entries[0].at.Add(l.opts.Window).Sub(now)
	if delay <= 0 {
		delay = time.Millisecond
	}

	return delay, false
}

// prune drops entries that are at least one window old.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.opts.Window)

	i := 0
	for i < len(l.entries) && !l.entries[i].at.After(cutoff) {
		i++
	}

	l.entries = l.entries[i:]
}

// Usage reports the admitted request count and total cost in the current window.
func (l *Limiter) Usage() (requests, cost int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.opts.Now())

	for _, e := range l.entries {
		cost += e.cost
	}

	return len(l.entries), cost
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
