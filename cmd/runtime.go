package cmd

import (
	"context"
	"fmt"
	"time"

	gcsapi "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/archive"
	"github.com/razor303Jc/Job-search-sub002/internal/archive/gcs"
	"github.com/razor303Jc/Job-search-sub002/internal/archive/local"
	"github.com/razor303Jc/Job-search-sub002/internal/config"
	"github.com/razor303Jc/Job-search-sub002/internal/fetch"
	"github.com/razor303Jc/Job-search-sub002/internal/fetch/detector"
	"github.com/razor303Jc/Job-search-sub002/internal/fetch/headless"
	"github.com/razor303Jc/Job-search-sub002/internal/logging"
	"github.com/razor303Jc/Job-search-sub002/internal/progress"
	"github.com/razor303Jc/Job-search-sub002/internal/progress/sinks"
	"github.com/razor303Jc/Job-search-sub002/internal/ratelimit"
	"github.com/razor303Jc/Job-search-sub002/internal/storage"
	"github.com/razor303Jc/Job-search-sub002/internal/storage/memory"
	"github.com/razor303Jc/Job-search-sub002/internal/storage/postgres"
)

// runtime holds the shared service graph built from configuration.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	store  storage.Store

	closers []func(context.Context) error
}

func buildRuntime(ctx context.Context, cfgPath string) (*runtime, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	rt := &runtime{cfg: cfg, logger: logger}

	if cfg.DB.DSN != "" {
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.DB.DSN,
			MaxConns: int32(cfg.DB.MaxConns),
			MinConns: int32(cfg.DB.MinConns),
		})
		if err != nil {
			return nil, err
		}
		rt.store = pg
		rt.closers = append(rt.closers, func(context.Context) error {
			pg.Close()
			return nil
		})
	} else {
		rt.store = memory.New()
	}

	return rt, nil
}

// fetcherFor builds the page fetcher: a rate-limited Colly fetcher carrying
// each source's timeout and retry budget, wrapped with the headless fallback
// for sources that opt in.
func (rt *runtime) fetcherFor() (pageFetcher, error) {
	limiter := ratelimit.New(ratelimit.Config{
		DefaultPerMinute: rt.cfg.HTTP.RequestsPerMinute,
		DefaultBurst:     rt.cfg.HTTP.BurstLimit,
	})
	for _, src := range rt.cfg.Sources {
		limiter.SetLimits(src.ID, src.RequestsPerMinute, src.BurstLimit)
	}

	static, err := fetch.New(fetch.Config{
		RequestTimeout: time.Duration(rt.cfg.HTTP.TimeoutSeconds) * time.Second,
		Retries:        rt.cfg.HTTP.MaxRetries,
	}, limiter, rt.logger.Named("fetch"))
	if err != nil {
		return nil, err
	}
	for _, src := range rt.cfg.Sources {
		static.SetSourceLimits(src.ID, src.Timeout, src.Retries)
	}

	// The noop renderer keeps the fallback seam in place when headless is
	// off; an opted-in source then logs a warning and keeps the static body.
	var renderer fetch.Renderer = headless.NoopRenderer{}
	if rt.cfg.Headless.Enabled {
		chrome, err := headless.New(headless.Config{
			MaxParallel:       rt.cfg.Headless.MaxParallel,
			NavigationTimeout: time.Duration(rt.cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			rt.logger.Warn("headless renderer init failed, staying static", zap.Error(err))
		} else {
			renderer = chrome
			rt.closers = append(rt.closers, func(context.Context) error {
				chrome.Close()
				return nil
			})
		}
	}

	promote := detector.NewHeuristic(rt.cfg.Headless.BodyThreshold)
	fetcher := fetch.NewRenderingFetcher(static, renderer, promote, rt.logger.Named("fetch"))
	for _, src := range rt.cfg.Sources {
		if src.RenderFallback {
			fetcher.AllowFallback(src.ID)
		}
	}
	return fetcher, nil
}

// pageFetcher is what the extraction engine and pipeline need from the
// fetch layer.
type pageFetcher interface {
	Fetch(ctx context.Context, sourceID, rawURL string) ([]byte, error)
	Retries() int64
}

// archiveStore returns the snapshot destination, or nil when archiving is
// not configured.
func (rt *runtime) archiveStore(ctx context.Context) (archive.Store, error) {
	switch {
	case rt.cfg.Storage.GCSBucket != "":
		client, err := gcsapi.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create storage client: %w", err)
		}
		rt.closers = append(rt.closers, func(context.Context) error {
			return client.Close()
		})
		return gcs.New(client, gcs.Config{Bucket: rt.cfg.Storage.GCSBucket})
	case rt.cfg.Storage.LocalDir != "":
		return local.New(local.Config{BaseDir: rt.cfg.Storage.LocalDir})
	default:
		return nil, nil
	}
}

// progressFanout wires the configured sinks behind one emitter.
func (rt *runtime) progressFanout(ctx context.Context) (*progress.Fanout, error) {
	sinkList := []progress.Sink{sinks.NewLogSink(rt.logger.Named("progress"))}
	prom, err := sinks.NewPrometheusSink(nil)
	if err != nil {
		return nil, err
	}
	sinkList = append(sinkList, prom)
	if rt.cfg.PubSub.ProjectID != "" {
		ps, err := sinks.NewPubSubSink(ctx, rt.cfg.PubSub.ProjectID, rt.cfg.PubSub.TopicName)
		if err != nil {
			return nil, err
		}
		sinkList = append(sinkList, ps)
	}
	fan := progress.NewFanout(rt.logger, sinkList...)
	rt.closers = append(rt.closers, fan.Close)
	return fan, nil
}

// close releases resources in reverse construction order.
func (rt *runtime) close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			rt.logger.Warn("shutdown step failed", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
