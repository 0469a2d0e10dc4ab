package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	memstore "github.com/razor303Jc/Job-search-sub002/internal/storage/memory"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		require.NoError(t, resp.Body.Close())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSearchListings(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	_, err := store.Save(context.Background(), jobs.Listing{
		ID:      "id-1",
		Title:   "Go Engineer",
		Company: "Acme Corp",
		Source: jobs.Provenance{
			Site:      "board-a",
			URL:       "https://board-a.example.com/jobs?id=11111",
			ScrapedAt: time.Unix(1700000000, 0).UTC(),
		},
	})
	require.NoError(t, err)

	srv := NewServer(store, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/listings?q=acme")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Listings []jobs.Listing `json:"listings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Listings, 1)
	require.Equal(t, "Go Engineer", payload.Listings[0].Title)
}

func TestSearchListingsRequiresQuery(t *testing.T) {
	t.Parallel()

	srv := NewServer(memstore.New(), zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/listings")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchListingsWithoutStore(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/listings?q=go")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
