package auth

import (
	"context"
	"sync"
	"time"

	"github.com/nordweb/portal/pkg/debug"
	"github.com/nordweb/portal/pkg/observability"
)

// RateLimiter checks whether another request for key fits in the budget.
// It returns ErrTooManyRequests when the budget is spent.
type RateLimiter interface {
	Allow(ctx context.Context, key string) error
}

// InProcessLimiter is a fixed-window rate limiter that tracks request
// counts per key in memory. Windows start at the first request for a key.
type InProcessLimiter struct {
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	counters map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a limiter allowing limit requests per window
// for each key. scope labels rejections in metrics ("signin", "contact").
// A limit of zero or less disables limiting.
func NewInProcessLimiter(scope string, limit int, window time.Duration) *InProcessLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &InProcessLimiter{
		scope:    scope,
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*counter),
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, key string) error {
	if l.limit <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= l.window {
		l.counters[key] = &counter{count: 1, windowAt: now}
		return nil
	}

	if c.count >= l.limit {
		observability.RateLimitRejectedTotal.WithLabelValues(l.scope).Inc()
		return ErrTooManyRequests
	}
	c.count++
	return nil
}

// Reset forgets the window for key, e.g. after a successful sign-in.
func (l *InProcessLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.counters, key)
	l.mu.Unlock()
}

// Prune drops every expired window and returns how many were removed.
func (l *InProcessLimiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, c := range l.counters {
		if now.Sub(c.windowAt) >= l.window {
			delete(l.counters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *InProcessLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// RunPruner calls Prune on every limiter each interval until ctx is done.
// It always returns nil so it can run inside an errgroup.
func RunPruner(ctx context.Context, interval time.Duration, limiters ...*InProcessLimiter) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, l := range limiters {
				if n := l.Prune(); n > 0 {
					debug.Log("auth", "pruned rate limit windows", "scope", l.scope, "removed", n)
				}
			}
		}
	}
}
