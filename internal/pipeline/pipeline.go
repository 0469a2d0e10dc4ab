// Package pipeline orchestrates one ingestion run: concurrent per-source
// extraction, normalization, combined deduplication, criteria filtering, and
// the hand-off to persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/dedup"
	"github.com/razor303Jc/Job-search-sub002/internal/extract"
	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	"github.com/razor303Jc/Job-search-sub002/internal/metrics"
	"github.com/razor303Jc/Job-search-sub002/internal/progress"
	"github.com/razor303Jc/Job-search-sub002/internal/storage"
)

// Extractor walks one source and returns its raw records. extract.Engine
// satisfies it.
type Extractor interface {
	Extract(ctx context.Context, src jobs.SourceDescriptor, criteria jobs.SearchCriteria, maxResults int) extract.Result
}

// Normalizer converts one raw record into a canonical listing.
type Normalizer interface {
	Normalize(raw jobs.RawJobRecord, site string) (*jobs.Listing, error)
}

// RetryCounter reports the cumulative fetch retry count. fetch.Fetcher and
// fetch.RenderingFetcher satisfy it.
type RetryCounter interface {
	Retries() int64
}

// Clock provides run timestamps.
type Clock interface {
	Now() time.Time
}

// Config tunes one Pipeline instance.
type Config struct {
	// FastDedupThreshold switches the combined dedup pass from accurate
	// pairwise scoring to hash mode once the batch exceeds this many
	// listings. Zero means the default of 500.
	FastDedupThreshold int
	// Dedup configures accurate-mode matching.
	Dedup dedup.Config
	// RunID overrides the generated run identifier, letting callers
	// correlate page-level progress events they emit themselves.
	RunID string
}

const defaultFastDedupThreshold = 500

// Pipeline wires the ingestion stages together. Construct one per logical
// scraper; Run may be called repeatedly but runs are serialized by the
// shared retry counter.
type Pipeline struct {
	cfg        Config
	extractor  Extractor
	normalizer Normalizer
	retries    RetryCounter
	store      storage.Store
	emitter    progress.Emitter
	clock      Clock
	logger     *zap.Logger
}

// New constructs a Pipeline. store may be nil when the caller only wants the
// in-memory result; emitter may be nil to disable progress events.
func New(cfg Config, extractor Extractor, normalizer Normalizer, retries RetryCounter, store storage.Store, emitter progress.Emitter, clock Clock, logger *zap.Logger) *Pipeline {
	if cfg.FastDedupThreshold <= 0 {
		cfg.FastDedupThreshold = defaultFastDedupThreshold
	}
	if emitter == nil {
		emitter = progress.NopEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:        cfg,
		extractor:  extractor,
		normalizer: normalizer,
		retries:    retries,
		store:      store,
		emitter:    emitter,
		clock:      clock,
		logger:     logger,
	}
}

// sourceOutput is one source's contribution, kept in source order so the
// combined dedup pass stays deterministic for a fixed input.
type sourceOutput struct {
	listings []jobs.Listing
	rawFound int
	pages    int
	err      error
}

// Run executes one ingestion pass over the given sources. Invalid criteria
// and cancellation fail immediately; every other failure is confined to its
// source and reported through the errors list of a partial result.
func (p *Pipeline) Run(ctx context.Context, sources []jobs.SourceDescriptor, criteria jobs.SearchCriteria) (*jobs.RunResult, error) {
	criteria = criteria.WithDefaults()
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &jobs.CancellationError{Op: "run", Err: err}
	}

	runID := p.cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	start := p.clock.Now()
	retriesBefore := p.retries.Retries()

	p.emit(ctx, progress.Event{RunID: runID, TS: start, Stage: progress.StageRunStart})

	outputs := p.extractAll(ctx, sources, criteria, runID)

	if err := ctx.Err(); err != nil {
		p.emit(ctx, progress.Event{
			RunID: runID, TS: p.clock.Now(), Stage: progress.StageRunError,
			Err: err.Error(),
		})
		return nil, &jobs.CancellationError{Op: "run", Err: err}
	}

	var (
		combined []jobs.Listing
		runErrs  []string
		m        jobs.RunMetrics
	)
	for i, out := range outputs {
		combined = append(combined, out.listings...)
		m.PagesFetched += out.pages
		m.JobsFound += out.rawFound
		if out.err != nil {
			var cancel *jobs.CancellationError
			if errors.As(out.err, &cancel) {
				p.emit(ctx, progress.Event{
					RunID: runID, TS: p.clock.Now(), Stage: progress.StageRunError,
					Err: out.err.Error(),
				})
				return nil, out.err
			}
			runErrs = append(runErrs, fmt.Sprintf("%s: %v", sources[i].ID, out.err))
		}
	}

	unique, dupRecords := p.deduplicate(combined)
	m.JobsDeduplicated = len(combined) - len(unique)

	filtered := filterByCriteria(unique, criteria, p.clock.Now())
	totalFound := len(filtered)
	if criteria.MaxResults > 0 && len(filtered) > criteria.MaxResults {
		filtered = filtered[:criteria.MaxResults]
	}

	if p.store != nil {
		saved, err := p.store.SaveMany(ctx, filtered)
		if err != nil {
			runErrs = append(runErrs, fmt.Sprintf("persist: %v", err))
		}
		p.logger.Info("persisted listings", zap.Int("saved", saved), zap.Int("total", len(filtered)))
		if sink, ok := p.store.(storage.DuplicateSink); ok && len(dupRecords) > 0 {
			if err := sink.SaveDuplicates(ctx, dupRecords); err != nil {
				p.logger.Warn("persist duplicate records", zap.Error(err))
			}
		}
	}

	m.Retries = int(p.retries.Retries() - retriesBefore)
	m.Errors = len(runErrs)
	m.Duration = p.clock.Now().Sub(start)
	metrics.ObserveRunDuration(m.Duration)

	p.emit(ctx, progress.Event{
		RunID: runID, TS: p.clock.Now(), Stage: progress.StageRunDone,
		Jobs: len(filtered),
	})

	return &jobs.RunResult{
		Jobs:       filtered,
		TotalFound: totalFound,
		Errors:     runErrs,
		Metadata: map[string]any{
			"runId":   runID,
			"metrics": m,
		},
	}, nil
}

// extractAll fans sources out to goroutines. Pages within a source stay
// sequential; outputs come back indexed by source position.
func (p *Pipeline) extractAll(ctx context.Context, sources []jobs.SourceDescriptor, criteria jobs.SearchCriteria, runID string) []sourceOutput {
	outputs := make([]sourceOutput, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src jobs.SourceDescriptor) {
			defer wg.Done()
			outputs[i] = p.runSource(ctx, src, criteria, runID)
		}(i, src)
	}
	wg.Wait()
	return outputs
}

func (p *Pipeline) runSource(ctx context.Context, src jobs.SourceDescriptor, criteria jobs.SearchCriteria, runID string) sourceOutput {
	metrics.IncActiveSources()
	defer metrics.DecActiveSources()

	p.emit(ctx, progress.Event{
		RunID: runID, TS: p.clock.Now(), Stage: progress.StageSourceStart,
		Source: src.ID,
	})

	res := p.extractor.Extract(ctx, src, criteria, criteria.MaxResults)
	out := sourceOutput{rawFound: len(res.Records), pages: res.PagesFetched, err: res.Err}

	for _, raw := range res.Records {
		listing, err := p.normalizer.Normalize(raw, src.ID)
		if err != nil {
			// Missing required fields drop the record, never the source.
			p.logger.Debug("skipping record",
				zap.String("source", src.ID),
				zap.String("page_url", raw.PageURL),
				zap.Int("card", raw.Index),
				zap.Error(err),
			)
			continue
		}
		out.listings = append(out.listings, *listing)
	}

	stage := progress.StageSourceDone
	evt := progress.Event{
		RunID: runID, TS: p.clock.Now(), Stage: stage,
		Source: src.ID, Page: res.PagesFetched, Jobs: len(out.listings),
	}
	if res.Err != nil {
		evt.Stage = progress.StageSourceError
		evt.Err = res.Err.Error()
	}
	p.emit(ctx, evt)
	return out
}

// deduplicate runs the combined single-threaded pass: accurate pairwise
// scoring for interactive batch sizes, hash mode above the threshold.
func (p *Pipeline) deduplicate(combined []jobs.Listing) ([]jobs.Listing, []jobs.DuplicateRecord) {
	if len(combined) > p.cfg.FastDedupThreshold {
		return dedup.FastDeduplicate(combined), nil
	}
	engine := dedup.NewEngine(p.cfg.Dedup, p.clock, p.logger)
	for i := range combined {
		engine.Admit(&combined[i])
	}
	return engine.Listings(), engine.Duplicates()
}

func (p *Pipeline) emit(ctx context.Context, evt progress.Event) {
	p.emitter.Emit(ctx, evt)
}

// filterByCriteria applies the post-extraction criteria filters. Listings
// with no posted date pass every date window; sources report staleness
// unreliably and dropping undated postings loses more than it saves.
func filterByCriteria(listings []jobs.Listing, c jobs.SearchCriteria, now time.Time) []jobs.Listing {
	cutoff, bounded := dateCutoff(c.DatePosted, now)
	out := make([]jobs.Listing, 0, len(listings))
	for _, l := range listings {
		if !matchesKeywords(l, c.Keywords) {
			continue
		}
		if matchesAnyKeyword(l, c.ExcludeKeywords) {
			continue
		}
		if c.Remote != nil && l.Remote != *c.Remote {
			continue
		}
		if !matchesSalary(l.Salary, c.SalaryMin, c.SalaryMax) {
			continue
		}
		if !matchesEmployment(l.EmploymentType, c.EmploymentTypes) {
			continue
		}
		if bounded && l.PostedDate != nil && l.PostedDate.Before(cutoff) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func dateCutoff(w jobs.DateWindow, now time.Time) (time.Time, bool) {
	switch w {
	case jobs.DateToday:
		return now.AddDate(0, 0, -1), true
	case jobs.DateWeek:
		return now.AddDate(0, 0, -7), true
	case jobs.DateMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

func matchesKeywords(l jobs.Listing, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	return matchesAnyKeyword(l, keywords)
}

func matchesAnyKeyword(l jobs.Listing, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	haystack := strings.ToLower(strings.Join([]string{
		l.Title, l.Company, l.Location, l.Description, strings.Join(l.Tags, " "),
	}, " "))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

func matchesSalary(s *jobs.Salary, min, max float64) bool {
	if s == nil || (min == 0 && max == 0) {
		// No parsed salary, or no bound requested: keep the listing.
		return true
	}
	if min > 0 && s.Max < min {
		return false
	}
	if max > 0 && s.Min > max {
		return false
	}
	return true
}

func matchesEmployment(t jobs.EmploymentType, wanted []jobs.EmploymentType) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if t == w {
			return true
		}
	}
	return false
}
