// Package memory provides an in-memory Store for development and testing.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/razor303Jc/Job-search-sub002/internal/dedup"
	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Store keeps listings in maps guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	listings   map[string]jobs.Listing
	byURL      map[string]string
	duplicates []jobs.DuplicateRecord
}

// New constructs a Store.
func New() *Store {
	return &Store{
		listings: make(map[string]jobs.Listing),
		byURL:    make(map[string]string),
	}
}

// Exists reports whether a listing with the given source URL is stored.
// URLs are compared after tracking-parameter stripping.
func (s *Store) Exists(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byURL[dedup.CleanURL(url)]
	return ok, nil
}

// Save persists one listing, returning true when it was newly stored.
func (s *Store) Save(_ context.Context, listing jobs.Listing) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.listings[listing.ID]
	s.listings[listing.ID] = listing
	if u := dedup.CleanURL(listing.Source.URL); u != "" {
		s.byURL[u] = listing.ID
	}
	return !existed, nil
}

// SaveMany persists each listing independently and returns the count stored.
func (s *Store) SaveMany(ctx context.Context, listings []jobs.Listing) (int, error) {
	saved := 0
	for _, l := range listings {
		if _, err := s.Save(ctx, l); err != nil {
			continue
		}
		saved++
	}
	return saved, nil
}

// Search matches the query text against stored titles and companies.
func (s *Store) Search(_ context.Context, query string) ([]jobs.Listing, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []jobs.Listing
	for _, l := range s.listings {
		if q == "" ||
			strings.Contains(strings.ToLower(l.Title), q) ||
			strings.Contains(strings.ToLower(l.Company), q) {
			out = append(out, l)
		}
	}
	return out, nil
}

// SaveDuplicates appends dedup audit records.
func (s *Store) SaveDuplicates(_ context.Context, records []jobs.DuplicateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicates = append(s.duplicates, records...)
	return nil
}

// Len reports the number of stored listings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listings)
}

// Duplicates returns stored audit records for assertions in tests.
func (s *Store) Duplicates() []jobs.DuplicateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]jobs.DuplicateRecord, len(s.duplicates))
	copy(out, s.duplicates)
	return out
}
