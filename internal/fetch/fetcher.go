// Package fetch performs rate-limited, retrying page retrieval for the
// extraction engine.
package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	"github.com/razor303Jc/Job-search-sub002/internal/metrics"
)

// Limiter gates every fetch attempt. The rate limiter satisfies this.
type Limiter interface {
	WaitForSlot(ctx context.Context, sourceID string) error
}

// Config controls fetcher behavior.
type Config struct {
	UserAgents     []string
	RequestTimeout time.Duration
	Retries        int
}

const (
	backoffBase = 1000 * time.Millisecond
	backoffCap  = 10 * time.Second
)

// Fetcher retrieves single pages via a shared Colly collector, rotating
// identifying headers and retrying transient failures with capped
// exponential backoff. Permanent failures short-circuit without consuming
// retry budget so a run can continue past one blocked page.
type Fetcher struct {
	baseCollector *colly.Collector
	limiter       Limiter
	agents        []string
	timeout       time.Duration
	retries       int
	nextAgent     atomic.Uint64
	retryCount    atomic.Int64
	logger        *zap.Logger

	mu        sync.RWMutex
	perSource map[string]sourceLimits

	// backoff is swapped out in tests to avoid real sleeps.
	backoff func(attempt int) time.Duration
}

// sourceLimits is the per-source override of the global fetch budget. A
// source with its own timeout gets its own collector, since the transport
// timeout is fixed per collector.
type sourceLimits struct {
	collector *colly.Collector
	retries   int
}

// New constructs a configured Colly-based Fetcher.
func New(cfg Config, limiter Limiter, logger *zap.Logger) (*Fetcher, error) {
	if limiter == nil {
		return nil, errors.New("limiter is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	agents := cfg.UserAgents
	if len(agents) == 0 {
		agents = defaultUserAgents
	}

	return &Fetcher{
		baseCollector: newCollector(cfg.RequestTimeout),
		limiter:       limiter,
		agents:        agents,
		timeout:       cfg.RequestTimeout,
		retries:       cfg.Retries,
		logger:        logger,
		perSource:     make(map[string]sourceLimits),
		backoff:       Backoff,
	}, nil
}

func newCollector(timeout time.Duration) *colly.Collector {
	c := colly.NewCollector(colly.Async(true))
	c.AllowURLRevisit = true
	c.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	})
	c.SetRequestTimeout(timeout)
	return c
}

// SetSourceLimits overrides the request timeout and retry budget for one
// source. Non-positive values keep the global configuration, mirroring the
// rate limiter's SetLimits.
func (f *Fetcher) SetSourceLimits(sourceID string, timeout time.Duration, retries int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	limits := f.perSource[sourceID]
	if timeout > 0 && timeout != f.timeout {
		limits.collector = newCollector(timeout)
	}
	if retries > 0 {
		limits.retries = retries
	}
	f.perSource[sourceID] = limits
}

// limitsFor resolves the collector and retry budget for one source.
func (f *Fetcher) limitsFor(sourceID string) (*colly.Collector, int) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	collector, retries := f.baseCollector, f.retries
	if limits, ok := f.perSource[sourceID]; ok {
		if limits.collector != nil {
			collector = limits.collector
		}
		if limits.retries > 0 {
			retries = limits.retries
		}
	}
	return collector, retries
}

// Backoff returns the delay before retry number attempt (0-based):
// min(1000ms * 2^attempt, 10s).
func Backoff(attempt int) time.Duration {
	delay := backoffBase << uint(attempt)
	if delay <= 0 || delay > backoffCap {
		return backoffCap
	}
	return delay
}

// Retries reports the cumulative retry count since construction. The
// pipeline snapshots it around a run to fill RunMetrics.
func (f *Fetcher) Retries() int64 {
	return f.retryCount.Load()
}

// Fetch retrieves one page body under the source's timeout and retry budget.
// The retry counter is local to this call, so the budget resets per logical
// page. The last transient error surfaces when retries are exhausted; a
// permanent error returns immediately.
func (f *Fetcher) Fetch(ctx context.Context, sourceID, rawURL string) ([]byte, error) {
	collector, retries := f.limitsFor(sourceID)
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &jobs.CancellationError{Op: "fetch " + rawURL, Err: err}
		}
		if err := f.limiter.WaitForSlot(ctx, sourceID); err != nil {
			return nil, err
		}

		body, err := f.attempt(ctx, collector, rawURL)
		if err == nil {
			return body, nil
		}
		if jobs.IsCancellation(err) {
			return nil, err
		}
		if jobs.IsPermanentNetwork(err) {
			metrics.ObserveFetchError(sourceID, "permanent")
			return nil, err
		}

		lastErr = err
		if attempt < retries {
			f.retryCount.Add(1)
			metrics.ObserveRetry(sourceID)
			delay := f.backoff(attempt)
			f.logger.Debug("retrying fetch",
				zap.String("source", sourceID),
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	metrics.ObserveFetchError(sourceID, "transient")
	return nil, lastErr
}

type fetchResult struct {
	status int
	body   []byte
	err    error
}

func (f *Fetcher) attempt(ctx context.Context, base *colly.Collector, rawURL string) ([]byte, error) {
	collector := base.Clone()
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	agent := f.agents[f.nextAgent.Add(1)%uint64(len(f.agents))]
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", agent)
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})
	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{status: r.StatusCode, body: append([]byte{}, r.Body...)})
	})
	collector.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		send(fetchResult{status: status, err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		if _, perr := url.Parse(rawURL); perr != nil {
			// Malformed request; retrying is pointless.
			return nil, &jobs.NetworkError{URL: rawURL, Transient: false, Err: err}
		}
		return nil, classify(rawURL, 0, err)
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return nil, &jobs.CancellationError{Op: "fetch " + rawURL, Err: err}
		}
		if res.err != nil || res.status >= 400 {
			return nil, classify(rawURL, res.status, res.err)
		}
		return res.body, nil
	default:
		return nil, &jobs.NetworkError{URL: rawURL, Transient: true, Err: errors.New("fetch produced no result")}
	}
}

// classify maps a failed attempt onto the transient/permanent taxonomy:
// 403/404/410 and malformed requests are permanent; 429, 5xx, and timeouts
// are transient.
func classify(rawURL string, status int, err error) error {
	switch {
	case status == http.StatusForbidden, status == http.StatusNotFound, status == http.StatusGone:
		return &jobs.NetworkError{URL: rawURL, StatusCode: status, Transient: false, Err: err}
	case status == http.StatusTooManyRequests, status >= 500:
		return &jobs.NetworkError{URL: rawURL, StatusCode: status, Transient: true, Err: err}
	case status >= 400:
		return &jobs.NetworkError{URL: rawURL, StatusCode: status, Transient: false, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &jobs.NetworkError{URL: rawURL, Transient: true, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &jobs.NetworkError{URL: rawURL, Transient: true, Err: err}
	}
	// Unparseable URLs and scheme errors will not improve with retries.
	var parseErr *net.AddrError
	if errors.As(err, &parseErr) {
		return &jobs.NetworkError{URL: rawURL, Transient: false, Err: err}
	}
	return &jobs.NetworkError{URL: rawURL, Transient: true, Err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &jobs.CancellationError{Op: "retry backoff", Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}
