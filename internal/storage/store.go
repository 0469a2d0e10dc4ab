// Package storage defines the narrow persistence interface the pipeline
// hands its unique listing set to. The durable engine behind it is an
// external collaborator; only save/search/exists semantics are assumed.
package storage

import (
	"context"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Store persists normalized listings.
type Store interface {
	// Exists reports whether a listing with the given source URL is stored.
	Exists(ctx context.Context, url string) (bool, error)
	// Save persists one listing, returning true when it was newly stored.
	Save(ctx context.Context, listing jobs.Listing) (bool, error)
	// SaveMany persists a batch and returns the number committed. One item's
	// failure must not abort the batch: each item commits or is retried
	// independently.
	SaveMany(ctx context.Context, listings []jobs.Listing) (int, error)
	// Search returns stored listings whose title or company matches the
	// query text.
	Search(ctx context.Context, query string) ([]jobs.Listing, error)
}

// DuplicateSink optionally persists dedup audit records. Stores may
// implement it; the pipeline probes with a type assertion.
type DuplicateSink interface {
	SaveDuplicates(ctx context.Context, records []jobs.DuplicateRecord) error
}
