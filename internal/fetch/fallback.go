package fetch

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Renderer produces a fully rendered DOM for pages the static fetch cannot
// serve. The headless package implements it.
type Renderer interface {
	Render(ctx context.Context, rawURL string) ([]byte, error)
}

// Promoter decides whether a static body warrants a headless render.
type Promoter interface {
	ShouldPromote(body []byte) bool
}

// RenderingFetcher wraps a Fetcher with the static-to-dynamic fallback: for
// sources opted in via AllowFallback, the static body is returned unless the
// detector flags it as script-rendered, in which case one headless render is
// attempted. A failed render falls back to the static body rather than
// failing the page.
type RenderingFetcher struct {
	static   *Fetcher
	renderer Renderer
	detector Promoter
	logger   *zap.Logger

	mu       sync.RWMutex
	fallback map[string]bool
}

// NewRenderingFetcher wires the fallback. renderer and detector may be nil,
// which disables promotion entirely.
func NewRenderingFetcher(static *Fetcher, renderer Renderer, detector Promoter, logger *zap.Logger) *RenderingFetcher {
	return &RenderingFetcher{
		static:   static,
		renderer: renderer,
		detector: detector,
		logger:   logger,
		fallback: make(map[string]bool),
	}
}

// AllowFallback opts one source into headless promotion. Sources stay
// static-only until opted in.
func (f *RenderingFetcher) AllowFallback(sourceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fallback[sourceID] = true
}

func (f *RenderingFetcher) fallbackAllowed(sourceID string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fallback[sourceID]
}

// Fetch retrieves one page, promoting to a headless render when warranted.
func (f *RenderingFetcher) Fetch(ctx context.Context, sourceID, rawURL string) ([]byte, error) {
	body, err := f.static.Fetch(ctx, sourceID, rawURL)
	if err != nil {
		return nil, err
	}
	if f.renderer == nil || f.detector == nil || !f.fallbackAllowed(sourceID) || !f.detector.ShouldPromote(body) {
		return body, nil
	}

	rendered, err := f.renderer.Render(ctx, rawURL)
	if err != nil {
		f.logger.Warn("headless promotion failed, using static body",
			zap.String("source", sourceID),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return body, nil
	}
	f.logger.Debug("headless promotion applied",
		zap.String("source", sourceID),
		zap.String("url", rawURL),
	)
	return rendered, nil
}

// Retries exposes the underlying fetcher's retry counter.
func (f *RenderingFetcher) Retries() int64 {
	return f.static.Retries()
}
