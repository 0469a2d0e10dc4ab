// Package extract walks a source's paginated listing pages and pulls raw job
// records out of the markup using the source's declarative rules.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/archive"
	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	"github.com/razor303Jc/Job-search-sub002/internal/metrics"
)

// PageFetcher retrieves one page body. fetch.Fetcher and
// fetch.RenderingFetcher both satisfy it.
type PageFetcher interface {
	Fetch(ctx context.Context, sourceID, rawURL string) ([]byte, error)
}

// Engine drives pagination for one source at a time. Pages within a source
// are fetched sequentially; the caller may run engines for independent
// sources concurrently.
type Engine struct {
	fetcher  PageFetcher
	snaps    archive.Store
	snapPref string
	logger   *zap.Logger
	now      func() time.Time
	onPage   func(sourceID, pageURL string, page int)
}

// Option configures optional Engine behavior.
type Option func(*Engine)

// WithArchive stores a snapshot of every fetched page body.
func WithArchive(store archive.Store, prefix string) Option {
	return func(e *Engine) {
		e.snaps = store
		e.snapPref = prefix
	}
}

// WithPageObserver installs a callback invoked after each successful page
// fetch, with the 1-based page number. Used to surface live progress.
func WithPageObserver(fn func(sourceID, pageURL string, page int)) Option {
	return func(e *Engine) {
		e.onPage = fn
	}
}

// WithClock overrides the timestamp source used for snapshot keys.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New constructs an Engine.
func New(fetcher PageFetcher, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the finite output of one source walk. Records preserve
// page-then-card order. Err is non-nil when pagination stopped early on a
// fetch failure; the records gathered before the failure are still valid.
type Result struct {
	Records      []jobs.RawJobRecord
	PagesFetched int
	Err          error
}

// Extract walks the source until the next affordance runs out, the page cap
// is hit, or maxResults records have been gathered. A card missing title or
// company is skipped, never fatal. A fetch failure stops this source only.
func (e *Engine) Extract(ctx context.Context, src jobs.SourceDescriptor, criteria jobs.SearchCriteria, maxResults int) Result {
	var res Result

	pageURL, err := FirstPageURL(src, criteria)
	if err != nil {
		res.Err = fmt.Errorf("build first page url for %s: %w", src.ID, err)
		return res
	}

	maxPages := src.Pagination.MaxPages
	if maxPages <= 0 {
		maxPages = jobs.DefaultMaxPages
	}

	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			res.Err = &jobs.CancellationError{Op: "extract " + src.ID, Err: err}
			return res
		}

		body, err := e.fetcher.Fetch(ctx, src.ID, pageURL)
		if err != nil {
			res.Err = err
			return res
		}
		res.PagesFetched++
		metrics.ObservePage(src.ID)
		if e.onPage != nil {
			e.onPage(src.ID, pageURL, res.PagesFetched)
		}
		e.snapshot(ctx, pageURL, body)

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			res.Err = fmt.Errorf("parse page %s: %w", pageURL, err)
			return res
		}

		cards := e.extractCards(doc, src, pageURL)
		metrics.ObserveJobs(src.ID, len(cards))
		for _, card := range cards {
			res.Records = append(res.Records, card)
			if maxResults > 0 && len(res.Records) >= maxResults {
				return res
			}
		}

		next, ok := e.nextPageURL(doc, src, pageURL, page)
		if !ok {
			return res
		}
		pageURL = next

		// Distinct from rate limiting: spaces page loads to avoid burst
		// signatures on the source side.
		if src.PageDelay > 0 && page < maxPages-1 {
			if err := pause(ctx, src.PageDelay); err != nil {
				res.Err = err
				return res
			}
		}
	}
	return res
}

func (e *Engine) extractCards(doc *goquery.Document, src jobs.SourceDescriptor, pageURL string) []jobs.RawJobRecord {
	base, _ := url.Parse(pageURL)
	var records []jobs.RawJobRecord

	doc.Find(src.Rules.Card).Each(func(i int, card *goquery.Selection) {
		title := textOf(card, src.Rules.Title)
		company := textOf(card, src.Rules.Company)
		if title == "" || company == "" {
			e.logger.Debug("skipping card missing title or company",
				zap.String("source", src.ID),
				zap.String("page", pageURL),
				zap.Int("index", i),
			)
			return
		}

		link := ""
		if src.Rules.Link != "" {
			if href, ok := card.Find(src.Rules.Link).First().Attr("href"); ok {
				link = resolveURL(base, href)
			}
		}
		fragment, _ := goquery.OuterHtml(card)

		records = append(records, jobs.RawJobRecord{
			Title:          title,
			Company:        company,
			Location:       textOf(card, src.Rules.Location),
			Description:    textOf(card, src.Rules.Description),
			Salary:         textOf(card, src.Rules.Salary),
			Date:           textOf(card, src.Rules.Date),
			EmploymentType: textOf(card, src.Rules.EmploymentType),
			Fragment:       fragment,
			URL:            link,
			PageURL:        pageURL,
			Index:          i,
		})
	})
	return records
}

// nextPageURL determines continuation from the next affordance: absent,
// disabled, or non-navigable means stop.
func (e *Engine) nextPageURL(doc *goquery.Document, src jobs.SourceDescriptor, pageURL string, page int) (string, bool) {
	if src.Rules.Next == "" {
		return "", false
	}
	next := doc.Find(src.Rules.Next).First()
	if next.Length() == 0 {
		return "", false
	}
	if _, disabled := next.Attr("disabled"); disabled {
		return "", false
	}
	if src.Rules.NextDisabledClass != "" && next.HasClass(src.Rules.NextDisabledClass) {
		return "", false
	}

	switch src.Pagination.Scheme {
	case jobs.PaginateByNextLink:
		href, ok := next.Attr("href")
		if !ok || strings.TrimSpace(href) == "" || strings.HasPrefix(href, "#") {
			return "", false
		}
		base, err := url.Parse(pageURL)
		if err != nil {
			return "", false
		}
		return resolveURL(base, href), true
	case jobs.PaginateByPage:
		return setParam(pageURL, src.Pagination.Param, fmt.Sprint(src.Pagination.StartPage+page+1)), true
	case jobs.PaginateByOffset:
		size := src.Pagination.PageSize
		if size <= 0 {
			size = 20
		}
		return setParam(pageURL, src.Pagination.Param, fmt.Sprint((page+1)*size)), true
	default:
		return "", false
	}
}

func (e *Engine) snapshot(ctx context.Context, pageURL string, body []byte) {
	if e.snaps == nil {
		return
	}
	key := archive.ObjectPath(e.snapPref, pageURL, e.now())
	if _, err := e.snaps.PutObject(ctx, key, "text/html; charset=utf-8", bytes.NewReader(body)); err != nil {
		e.logger.Warn("failed to archive page snapshot", zap.String("url", pageURL), zap.Error(err))
	}
}

func textOf(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func setParam(rawURL, param, value string) string {
	u, err := url.Parse(rawURL)
	if err != nil || param == "" {
		return rawURL
	}
	q := u.Query()
	q.Set(param, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func pause(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return &jobs.CancellationError{Op: "inter-page delay", Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}
