// Package ratelimit implements a per-source rolling-window rate limiter with
// an independent short burst window.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	"github.com/razor303Jc/Job-search-sub002/internal/metrics"
)

// Config holds rate limiter configuration. Zero limits fall back to the
// defaults below.
type Config struct {
	DefaultPerMinute int
	DefaultBurst     int
}

const (
	defaultPerMinute = 30
	defaultBurst     = 5
)

// Limiter manages per-source request budgets. Each source is bounded by a
// rolling 60s window and a rolling 1s burst window; a slot is granted only
// when both have room, and the grant timestamp is recorded at that moment.
type Limiter struct {
	mu      sync.Mutex
	sources map[string]*window
	cfg     Config

	// Window durations are fixed in production; tests shrink them.
	minuteWindow time.Duration
	burstWindow  time.Duration
}

type window struct {
	perMinute int
	burst     int
	// grants is time-ordered; eviction bounds its size to perMinute.
	grants []time.Time
}

// New creates a Limiter.
func New(cfg Config) *Limiter {
	if cfg.DefaultPerMinute <= 0 {
		cfg.DefaultPerMinute = defaultPerMinute
	}
	if cfg.DefaultBurst <= 0 {
		cfg.DefaultBurst = defaultBurst
	}
	return &Limiter{
		sources:      make(map[string]*window),
		cfg:          cfg,
		minuteWindow: time.Minute,
		burstWindow:  time.Second,
	}
}

// SetLimits overrides the budget for one source. Existing grant history is
// kept so tightening a limit takes effect immediately.
func (l *Limiter) SetLimits(sourceID string, perMinute, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.source(sourceID)
	if perMinute > 0 {
		w.perMinute = perMinute
	}
	if burst > 0 {
		w.burst = burst
	}
}

// WaitForSlot suspends the caller until one request for sourceID is
// permitted, then records the grant. The context aborts the wait.
func (l *Limiter) WaitForSlot(ctx context.Context, sourceID string) error {
	start := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return &jobs.CancellationError{Op: "rate limit wait", Err: err}
		}

		wait, err := l.tryAcquire(sourceID, time.Now())
		if err == nil {
			if waited := time.Since(start); waited > time.Millisecond {
				metrics.ObserveRateLimitDelay(sourceID, waited)
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return &jobs.CancellationError{Op: "rate limit wait", Err: ctx.Err()}
		case <-timer.C:
		}
	}
}

// tryAcquire grants a slot or returns jobs.ErrRateLimitExceeded with the
// minimal wait until the oldest relevant grant leaves its window.
func (l *Limiter) tryAcquire(sourceID string, now time.Time) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.source(sourceID)
	w.evict(now.Add(-l.minuteWindow))

	burstCount := 0
	burstCutoff := now.Add(-l.burstWindow)
	oldestBurst := time.Time{}
	for _, g := range w.grants {
		if g.After(burstCutoff) {
			if oldestBurst.IsZero() {
				oldestBurst = g
			}
			burstCount++
		}
	}

	var wait time.Duration
	if len(w.grants) >= w.perMinute {
		wait = w.grants[0].Add(l.minuteWindow).Sub(now)
	}
	if burstCount >= w.burst {
		burstWait := oldestBurst.Add(l.burstWindow).Sub(now)
		if wait == 0 || burstWait < wait {
			wait = burstWait
		}
	}
	if wait > 0 {
		return wait, fmt.Errorf("source %s: %w", sourceID, jobs.ErrRateLimitExceeded)
	}

	w.grants = append(w.grants, now)
	return 0, nil
}

// Reset clears all grant history.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.sources {
		w.grants = w.grants[:0]
	}
}

func (l *Limiter) source(id string) *window {
	w, ok := l.sources[id]
	if !ok {
		w = &window{perMinute: l.cfg.DefaultPerMinute, burst: l.cfg.DefaultBurst}
		l.sources[id] = w
	}
	return w
}

func (w *window) evict(cutoff time.Time) {
	i := 0
	for i < len(w.grants) && !w.grants[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.grants = append(w.grants[:0], w.grants[i:]...)
	}
}
