// Package dedup admits normalized listings into a unique set, merging
// near-identical postings. Accurate mode scores weighted multi-field
// similarity per admitted listing; fast mode hashes the normalized identity
// triple for O(n) throughput on large batches.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
	"github.com/razor303Jc/Job-search-sub002/internal/metrics"
)

// Config controls accurate-mode matching.
type Config struct {
	Thresholds     Thresholds
	UseDescription bool
}

// Clock stamps duplicate audit records.
type Clock interface {
	Now() time.Time
}

// Engine holds the admitted set for one pipeline run. It is owned by a
// single run and is not safe for concurrent use; the pipeline feeds it the
// combined source output single-threaded, so first-seen-wins stays
// deterministic for a fixed input order.
type Engine struct {
	cfg      Config
	clock    Clock
	logger   *zap.Logger
	admitted []*jobs.Listing
	records  []jobs.DuplicateRecord
}

// NewEngine constructs an accurate-mode Engine.
func NewEngine(cfg Config, clock Clock, logger *zap.Logger) *Engine {
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	return &Engine{
		cfg:    cfg,
		clock:  clock,
		logger: logger,
	}
}

// Admit scores the listing against every already-admitted listing. It
// returns the canonical ID and whether the listing was merged into an
// existing one. First-seen stays canonical.
func (e *Engine) Admit(listing *jobs.Listing) (canonicalID string, merged bool) {
	for _, candidate := range e.admitted {
		res := Compare(listing, candidate, e.cfg.Thresholds, e.cfg.UseDescription)
		if !IsDuplicate(res, e.cfg.Thresholds) {
			continue
		}
		Merge(candidate, listing)
		e.record(candidate.ID, listing.ID, res.Score)
		metrics.ObserveDuplicate("accurate")
		e.logger.Debug("merged duplicate listing",
			zap.String("canonical", candidate.ID),
			zap.String("duplicate", listing.ID),
			zap.Float64("score", res.Score),
			zap.Strings("fields", res.MatchedFields),
		)
		return candidate.ID, true
	}

	e.admitted = append(e.admitted, listing)
	return listing.ID, false
}

// Listings returns the unique set in admission order.
func (e *Engine) Listings() []jobs.Listing {
	out := make([]jobs.Listing, len(e.admitted))
	for i, l := range e.admitted {
		out[i] = *l
	}
	return out
}

// Duplicates returns the audit records produced so far.
func (e *Engine) Duplicates() []jobs.DuplicateRecord {
	out := make([]jobs.DuplicateRecord, len(e.records))
	copy(out, e.records)
	return out
}

func (e *Engine) record(originalID, duplicateID string, score float64) {
	e.records = append(e.records, jobs.DuplicateRecord{
		ID:          uuid.NewString(),
		OriginalID:  originalID,
		DuplicateID: duplicateID,
		Score:       score,
		Timestamp:   e.clock.Now(),
	})
}

// StructuralHash digests the normalized (title, company, location) triple.
// Collisions intentionally count as duplicates; recall is traded for
// throughput.
func StructuralHash(l *jobs.Listing) string {
	key := fmt.Sprintf("%s|%s|%s",
		normalizeTitle(l.Title),
		normalizeCompany(l.Company),
		normalizeLocation(l.Location),
	)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// FastDeduplicate collapses listings whose structural hashes collide,
// merging each duplicate into the first-seen canonical. Applying it twice
// yields the same set, and its unique set is never smaller than accurate
// mode's for inputs with identical normalized triples.
func FastDeduplicate(listings []jobs.Listing) []jobs.Listing {
	seen := make(map[string]int, len(listings))
	unique := make([]jobs.Listing, 0, len(listings))

	for _, l := range listings {
		hash := StructuralHash(&l)
		if idx, ok := seen[hash]; ok {
			Merge(&unique[idx], &l)
			metrics.ObserveDuplicate("fast")
			continue
		}
		seen[hash] = len(unique)
		unique = append(unique, l)
	}
	return unique
}
