package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

type nopLimiter struct {
	calls atomic.Int64
}

func (l *nopLimiter) WaitForSlot(ctx context.Context, _ string) error {
	l.calls.Add(1)
	return ctx.Err()
}

func newTestFetcher(t *testing.T, retries int) (*Fetcher, *nopLimiter) {
	t.Helper()
	limiter := &nopLimiter{}
	f, err := New(Config{Retries: retries, RequestTimeout: 5 * time.Second}, limiter, zap.NewNop())
	require.NoError(t, err)
	// No real sleeps between test retries.
	f.backoff = func(int) time.Duration { return time.Millisecond }
	return f, limiter
}

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer ts.Close()

	f, limiter := newTestFetcher(t, 2)
	body, err := f.Fetch(context.Background(), "board-a", ts.URL)
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", string(body))
	require.Equal(t, int64(1), limiter.calls.Load())
}

func TestFetchPermanentStatusDoesNotRetry(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusForbidden, http.StatusNotFound, http.StatusGone} {
		var hits atomic.Int64
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(status)
		}))

		f, _ := newTestFetcher(t, 3)
		_, err := f.Fetch(context.Background(), "board-a", ts.URL)
		require.Error(t, err)
		require.True(t, jobs.IsPermanentNetwork(err), "status %d should be permanent", status)
		require.Equal(t, int64(1), hits.Load(), "status %d must not be retried", status)
		require.Equal(t, int64(0), f.Retries())
		ts.Close()
	}
}

func TestFetchTransientStatusRetriesExactly(t *testing.T) {
	t.Parallel()

	const retries = 3
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	f, limiter := newTestFetcher(t, retries)
	_, err := f.Fetch(context.Background(), "board-a", ts.URL)
	require.Error(t, err)
	require.True(t, jobs.IsTransientNetwork(err))

	// One initial attempt plus exactly `retries` extra, each gated by the
	// rate limiter.
	require.Equal(t, int64(retries+1), hits.Load())
	require.Equal(t, int64(retries+1), limiter.calls.Load())
	require.Equal(t, int64(retries), f.Retries())
}

func TestFetchRecoversAfterTransientFailure(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer ts.Close()

	f, _ := newTestFetcher(t, 2)
	body, err := f.Fetch(context.Background(), "board-a", ts.URL)
	require.NoError(t, err)
	require.Equal(t, "recovered", string(body))
	require.Equal(t, int64(1), f.Retries())
}

func TestFetchRotatesUserAgents(t *testing.T) {
	t.Parallel()

	seen := make(chan string, 4)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	limiter := &nopLimiter{}
	f, err := New(Config{
		UserAgents:     []string{"agent-a", "agent-b"},
		RequestTimeout: 5 * time.Second,
	}, limiter, zap.NewNop())
	require.NoError(t, err)

	agents := make(map[string]int)
	for i := 0; i < 4; i++ {
		_, err := f.Fetch(context.Background(), "board-a", ts.URL)
		require.NoError(t, err)
		agents[<-seen]++
	}
	require.Equal(t, 2, agents["agent-a"])
	require.Equal(t, 2, agents["agent-b"])
}

func TestFetchPerSourceRetryOverride(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	f, _ := newTestFetcher(t, 3)
	f.SetSourceLimits("board-b", 0, 1)

	// board-b runs under its own budget: one attempt plus one retry.
	_, err := f.Fetch(context.Background(), "board-b", ts.URL)
	require.Error(t, err)
	require.Equal(t, int64(2), hits.Load())

	// A source without an override keeps the global budget of 3 retries.
	hits.Store(0)
	_, err = f.Fetch(context.Background(), "board-a", ts.URL)
	require.Error(t, err)
	require.Equal(t, int64(4), hits.Load())
}

func TestFetchPerSourceTimeoutOverride(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte("slow"))
	}))
	defer ts.Close()

	f, _ := newTestFetcher(t, 0)
	f.SetSourceLimits("board-slow", 50*time.Millisecond, 0)

	// The overridden source times out and classifies as transient.
	_, err := f.Fetch(context.Background(), "board-slow", ts.URL)
	require.Error(t, err)
	require.True(t, jobs.IsTransientNetwork(err))

	// The global five second timeout still serves other sources.
	body, err := f.Fetch(context.Background(), "board-a", ts.URL)
	require.NoError(t, err)
	require.Equal(t, "slow", string(body))
}

func TestFetchCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _ := newTestFetcher(t, 1)
	_, err := f.Fetch(ctx, "board-a", "https://example.com")
	require.True(t, jobs.IsCancellation(err))
}

func TestBackoffSchedule(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1*time.Second, Backoff(0))
	require.Equal(t, 2*time.Second, Backoff(1))
	require.Equal(t, 4*time.Second, Backoff(2))
	require.Equal(t, 8*time.Second, Backoff(3))
	// Capped at 10s from the fourth retry on.
	require.Equal(t, 10*time.Second, Backoff(4))
	require.Equal(t, 10*time.Second, Backoff(20))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status    int
		transient bool
	}{
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
		{http.StatusGone, false},
		{http.StatusBadRequest, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}
	for _, tc := range cases {
		err := classify("https://example.com", tc.status, nil)
		var netErr *jobs.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.Equal(t, tc.transient, netErr.Transient, "status %d", tc.status)
		require.Equal(t, tc.status, netErr.StatusCode)
	}
}
