// Package postgres provides a Postgres-backed listing store.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razor303Jc/Job-search-sub002/internal/dedup"
	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pgxIface is the seam between the store and pgxpool, sized for pgxmock.
type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store writes listings into Postgres.
type Store struct {
	pool pgxIface
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing with pgxmock).
func NewWithPool(pool pgxIface) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const upsertListing = `
INSERT INTO listings (
	id,
	title,
	company,
	location,
	description,
	salary,
	employment_type,
	remote,
	posted_date,
	expiry_date,
	requirements,
	benefits,
	tags,
	source_site,
	source_url,
	clean_url,
	scraped_at,
	confidence,
	raw_data
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19
)
ON CONFLICT (id) DO UPDATE SET
	description = EXCLUDED.description,
	salary = EXCLUDED.salary,
	tags = EXCLUDED.tags,
	confidence = GREATEST(listings.confidence, EXCLUDED.confidence),
	scraped_at = EXCLUDED.scraped_at`

// Save upserts one listing. Timestamps cross this boundary as ISO-8601
// strings; confidence never decreases on conflict.
func (s *Store) Save(ctx context.Context, listing jobs.Listing) (bool, error) {
	salaryJSON, err := marshalNullable(listing.Salary)
	if err != nil {
		return false, fmt.Errorf("marshal salary: %w", err)
	}
	rawJSON, err := json.Marshal(listing.Metadata.RawData)
	if err != nil {
		return false, fmt.Errorf("marshal raw data: %w", err)
	}

	tag, err := s.pool.Exec(ctx, upsertListing,
		listing.ID,
		listing.Title,
		listing.Company,
		listing.Location,
		listing.Description,
		salaryJSON,
		string(listing.EmploymentType),
		listing.Remote,
		isoTime(listing.PostedDate),
		isoTime(listing.ExpiryDate),
		listing.Requirements,
		listing.Benefits,
		listing.Tags,
		listing.Source.Site,
		listing.Source.URL,
		dedup.CleanURL(listing.Source.URL),
		listing.Source.ScrapedAt.UTC().Format(time.RFC3339),
		listing.Metadata.Confidence,
		rawJSON,
	)
	if err != nil {
		return false, fmt.Errorf("upsert listing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SaveMany persists each listing independently, retrying each failed item
// once. One item's failure never aborts the batch.
func (s *Store) SaveMany(ctx context.Context, listings []jobs.Listing) (int, error) {
	saved := 0
	var lastErr error
	for _, l := range listings {
		if _, err := s.Save(ctx, l); err != nil {
			if _, retryErr := s.Save(ctx, l); retryErr != nil {
				lastErr = retryErr
				continue
			}
		}
		saved++
	}
	if saved == 0 && lastErr != nil {
		return 0, fmt.Errorf("save batch: %w", lastErr)
	}
	return saved, nil
}

// Exists reports whether a listing with the given source URL is stored.
func (s *Store) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	row := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM listings WHERE clean_url = $1)`,
		dedup.CleanURL(url),
	)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return exists, nil
}

// Search matches the query text against stored titles and companies.
func (s *Store) Search(ctx context.Context, query string) ([]jobs.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, company, location, description, employment_type, remote, source_site, source_url, confidence
		 FROM listings
		 WHERE title ILIKE '%' || $1 || '%' OR company ILIKE '%' || $1 || '%'
		 ORDER BY scraped_at DESC`,
		query,
	)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var out []jobs.Listing
	for rows.Next() {
		var l jobs.Listing
		var employment string
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Company, &l.Location, &l.Description,
			&employment, &l.Remote, &l.Source.Site, &l.Source.URL,
			&l.Metadata.Confidence,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		l.EmploymentType = jobs.EmploymentType(employment)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return out, nil
}

// SaveDuplicates appends dedup audit rows.
func (s *Store) SaveDuplicates(ctx context.Context, records []jobs.DuplicateRecord) error {
	for _, r := range records {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO duplicate_records (id, original_id, duplicate_id, score, recorded_at)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (id) DO NOTHING`,
			r.ID, r.OriginalID, r.DuplicateID, r.Score, r.Timestamp.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert duplicate record: %w", err)
		}
	}
	return nil
}

func marshalNullable(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(*jobs.Salary); ok && s == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func isoTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
