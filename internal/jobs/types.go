// Package jobs defines the core types shared across the ingestion subsystems:
// source descriptors, raw and normalized listings, search criteria, and the
// error taxonomy used by the fetch/extract/normalize/dedup pipeline.
package jobs

import (
	"time"
)

// SalaryPeriod is the pay interval attached to a parsed salary.
type SalaryPeriod string

// Supported salary periods.
const (
	PeriodHourly  SalaryPeriod = "hourly"
	PeriodDaily   SalaryPeriod = "daily"
	PeriodWeekly  SalaryPeriod = "weekly"
	PeriodMonthly SalaryPeriod = "monthly"
	PeriodYearly  SalaryPeriod = "yearly"
)

// EmploymentType classifies a posting's engagement model.
type EmploymentType string

// Supported employment types.
const (
	TypeFullTime   EmploymentType = "full-time"
	TypePartTime   EmploymentType = "part-time"
	TypeContract   EmploymentType = "contract"
	TypeTemporary  EmploymentType = "temporary"
	TypeInternship EmploymentType = "internship"
	TypeFreelance  EmploymentType = "freelance"
)

// Salary is a parsed compensation range. Min <= Max always holds for values
// produced by the normalizer.
type Salary struct {
	Min      float64      `json:"min"`
	Max      float64      `json:"max"`
	Currency string       `json:"currency"`
	Period   SalaryPeriod `json:"period"`
}

// Provenance records where a listing was scraped from. MergedSites collects
// the site IDs of duplicates folded into this listing, in merge order and
// without repeats.
type Provenance struct {
	Site        string    `json:"site"`
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scrapedAt"`
	MergedSites []string  `json:"mergedSites,omitempty"`
}

// Metadata carries quality and provenance extras for a normalized listing.
type Metadata struct {
	// Confidence is a completeness score in [0,1], rounded to two decimals.
	// It never decreases when duplicates are merged into this listing.
	Confidence float64 `json:"confidence"`
	// RawData is an opaque provenance bag (original field text, page URL,
	// card index). It is not interpreted by the pipeline.
	RawData map[string]any `json:"rawData,omitempty"`
}

// Listing is the canonical normalized job posting flowing through dedup and
// out to persistence. Timestamps serialize as ISO-8601 at the JSON boundary.
type Listing struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	Location       string         `json:"location"`
	Description    string         `json:"description"`
	Salary         *Salary        `json:"salary,omitempty"`
	EmploymentType EmploymentType `json:"employmentType"`
	Remote         bool           `json:"remote"`
	PostedDate     *time.Time     `json:"postedDate,omitempty"`
	ExpiryDate     *time.Time     `json:"expiryDate,omitempty"`
	Requirements   []string       `json:"requirements,omitempty"`
	Benefits       []string       `json:"benefits,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Source         Provenance     `json:"source"`
	Metadata       Metadata       `json:"metadata"`
}

// RawJobRecord is the as-scraped form of a single card. It is owned by the
// normalization step that consumes it and is never persisted.
type RawJobRecord struct {
	Title          string
	Company        string
	Location       string
	Description    string
	Salary         string
	Date           string
	EmploymentType string
	Fragment       string
	URL            string
	PageURL        string
	Index          int
}

// ExtractionRules holds the per-source selectors used to locate job cards and
// their fields. Selectors are data on the descriptor, not per-site code.
type ExtractionRules struct {
	Card           string `mapstructure:"card"`
	Title          string `mapstructure:"title"`
	Company        string `mapstructure:"company"`
	Location       string `mapstructure:"location"`
	Link           string `mapstructure:"link"`
	Salary         string `mapstructure:"salary"`
	Date           string `mapstructure:"date"`
	EmploymentType string `mapstructure:"employment_type"`
	Description    string `mapstructure:"description"`
	Next           string `mapstructure:"next"`
	// NextDisabledClass marks a present-but-inert next affordance.
	NextDisabledClass string `mapstructure:"next_disabled_class"`
}

// PaginationScheme selects how subsequent page URLs are built.
type PaginationScheme string

// Supported pagination schemes.
const (
	// PaginateByPage increments a page-number query parameter.
	PaginateByPage PaginationScheme = "page"
	// PaginateByOffset advances an offset query parameter by PageSize.
	PaginateByOffset PaginationScheme = "offset"
	// PaginateByNextLink follows the href of the next affordance.
	PaginateByNextLink PaginationScheme = "next-link"
)

// DefaultMaxPages bounds a source walk when the descriptor does not cap
// pages, so a board with a perpetual next affordance cannot loop forever.
const DefaultMaxPages = 50

// Pagination describes how a source pages its results. A zero MaxPages means
// DefaultMaxPages.
type Pagination struct {
	Scheme    PaginationScheme `mapstructure:"scheme"`
	Param     string           `mapstructure:"param"`
	PageSize  int              `mapstructure:"page_size"`
	StartPage int              `mapstructure:"start_page"`
	MaxPages  int              `mapstructure:"max_pages"`
}

// SourceDescriptor is the immutable per-run configuration for one external
// job board. Behavioral differences between boards (parameter names, offsets,
// selectors) live here as data.
type SourceDescriptor struct {
	ID      string `mapstructure:"id"`
	BaseURL string `mapstructure:"base_url"`
	// SearchPath is joined to BaseURL to form the listing endpoint.
	SearchPath string `mapstructure:"search_path"`
	// Params maps criteria fields ("keywords", "location") to the source's
	// query parameter names.
	Params            map[string]string `mapstructure:"params"`
	Rules             ExtractionRules   `mapstructure:"rules"`
	Pagination        Pagination        `mapstructure:"pagination"`
	RequestsPerMinute int               `mapstructure:"requests_per_minute"`
	BurstLimit        int               `mapstructure:"burst_limit"`
	Timeout           time.Duration     `mapstructure:"timeout"`
	Retries           int               `mapstructure:"retries"`
	// PageDelay is the inter-page pause, independent of rate limiting.
	PageDelay time.Duration `mapstructure:"page_delay"`
	// RenderFallback enables the static-to-headless promotion for this source.
	RenderFallback bool `mapstructure:"render_fallback"`
}

// SimilarityResult is the ephemeral outcome of comparing one listing against
// one admitted candidate. It is never persisted.
type SimilarityResult struct {
	Candidate     *Listing
	Score         float64
	MatchedFields []string
}

// DuplicateRecord is the audit trail row emitted when a listing is merged.
// Its lifecycle is independent of the listings it references.
type DuplicateRecord struct {
	ID          string    `json:"id"`
	OriginalID  string    `json:"originalId"`
	DuplicateID string    `json:"duplicateId"`
	Score       float64   `json:"score"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunMetrics are the counters for one pipeline invocation. They are created
// at run start, mutated only by the run that owns them, and frozen into the
// result at run end.
type RunMetrics struct {
	PagesFetched     int           `json:"pagesFetched"`
	JobsFound        int           `json:"jobsFound"`
	JobsDeduplicated int           `json:"jobsDeduplicated"`
	Retries          int           `json:"retries"`
	Errors           int           `json:"errors"`
	Duration         time.Duration `json:"duration"`
}

// RunResult is the exact shape consumed by report generators and the storage
// layer: the unique listing set plus per-run accounting.
type RunResult struct {
	Jobs       []Listing      `json:"jobs"`
	TotalFound int            `json:"totalFound"`
	Errors     []string       `json:"errors"`
	Metadata   map[string]any `json:"metadata"`
}
