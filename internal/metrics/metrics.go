// Package metrics exposes Prometheus collectors for the ingestion service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scraperPagesTotal         *prometheus.CounterVec
	scraperJobsTotal          *prometheus.CounterVec
	scraperDuplicatesTotal    *prometheus.CounterVec
	scraperFetchRetriesTotal  *prometheus.CounterVec
	scraperFetchErrorsTotal   *prometheus.CounterVec
	scraperRateLimitDelay     *prometheus.HistogramVec
	scraperRunDurationSeconds prometheus.Histogram
	scraperActiveSourcesGauge prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scraperPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_total",
				Help: "Total number of listing pages fetched, labeled by source.",
			},
			[]string{"source"},
		)

		scraperJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_jobs_total",
				Help: "Total number of raw job cards extracted, labeled by source.",
			},
			[]string{"source"},
		)

		scraperDuplicatesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_duplicates_total",
				Help: "Total number of listings merged as duplicates, labeled by dedup mode.",
			},
			[]string{"mode"},
		)

		scraperFetchRetriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_retries_total",
				Help: "Total number of fetch retries, labeled by source.",
			},
			[]string{"source"},
		)

		scraperFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_fetch_errors_total",
				Help: "Total number of failed fetches, labeled by source and error kind.",
			},
			[]string{"source", "kind"},
		)

		scraperRateLimitDelay = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scraper_rate_limit_delay_seconds",
				Help:    "Histogram of rate limit wait durations, labeled by source.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"source"},
		)

		scraperRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scraper_run_duration_seconds",
				Help:    "Histogram of end-to-end pipeline run durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
			},
		)

		scraperActiveSourcesGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "scraper_active_sources",
				Help: "Number of sources currently being scraped.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the fetched-page counter for a source.
func ObservePage(source string) {
	Init()
	scraperPagesTotal.WithLabelValues(source).Inc()
}

// ObserveJobs adds extracted card counts for a source.
func ObserveJobs(source string, count int) {
	Init()
	scraperJobsTotal.WithLabelValues(source).Add(float64(count))
}

// ObserveDuplicate increments the merged-duplicate counter for a dedup mode.
func ObserveDuplicate(mode string) {
	Init()
	scraperDuplicatesTotal.WithLabelValues(mode).Inc()
}

// ObserveRetry increments the fetch retry counter for a source.
func ObserveRetry(source string) {
	Init()
	scraperFetchRetriesTotal.WithLabelValues(source).Inc()
}

// ObserveFetchError increments the fetch error counter.
func ObserveFetchError(source, kind string) {
	Init()
	scraperFetchErrorsTotal.WithLabelValues(source, kind).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(source string, duration time.Duration) {
	Init()
	scraperRateLimitDelay.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveRunDuration records one pipeline run duration.
func ObserveRunDuration(duration time.Duration) {
	Init()
	scraperRunDurationSeconds.Observe(duration.Seconds())
}

// IncActiveSources increments the active sources gauge.
func IncActiveSources() {
	Init()
	scraperActiveSourcesGauge.Inc()
}

// DecActiveSources decrements the active sources gauge.
func DecActiveSources() {
	Init()
	scraperActiveSourcesGauge.Dec()
}
