// Package normalize converts raw scraped records into canonical listings:
// heuristic salary, date, and employment-type parsing plus a deterministic
// completeness confidence score.
package normalize

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Clock supplies the reference time for relative date parsing and scrape
// timestamps.
type Clock interface {
	Now() time.Time
}

// Normalizer turns RawJobRecord values into NormalizedJobListing values.
type Normalizer struct {
	clock  Clock
	logger *zap.Logger
}

// New constructs a Normalizer.
func New(clock Clock, logger *zap.Logger) *Normalizer {
	return &Normalizer{clock: clock, logger: logger}
}

// Confidence weights per present field. The weighted sum is rounded to two
// decimals; the deduplicator uses it to keep the richer record in a merge.
const (
	weightTitle       = 0.25
	weightCompany     = 0.20
	weightLocation    = 0.15
	weightDescription = 0.15
	weightURL         = 0.10
	weightSalary      = 0.05
	weightType        = 0.05
	weightDate        = 0.05
)

// Normalize converts one raw record. It returns a ValidationError when
// title, company, location, description, or URL is absent after trimming;
// any other parse trouble degrades the listing instead of failing it.
func (n *Normalizer) Normalize(raw jobs.RawJobRecord, site string) (*jobs.Listing, error) {
	title := strings.TrimSpace(raw.Title)
	company := strings.TrimSpace(raw.Company)
	location := strings.TrimSpace(raw.Location)
	description := strings.TrimSpace(raw.Description)
	link := strings.TrimSpace(raw.URL)

	switch {
	case title == "":
		return nil, &jobs.ValidationError{Field: "title"}
	case company == "":
		return nil, &jobs.ValidationError{Field: "company"}
	case location == "":
		return nil, &jobs.ValidationError{Field: "location"}
	case description == "":
		return nil, &jobs.ValidationError{Field: "description"}
	case link == "":
		return nil, &jobs.ValidationError{Field: "url"}
	}

	now := n.clock.Now()
	salary := ParseSalary(raw.Salary)
	posted := ParsePostedDate(raw.Date, now)
	employment, typeMatched := inferEmploymentType(raw.EmploymentType, description)
	remote := inferRemote(location, description)

	confidence := weightTitle + weightCompany + weightLocation + weightDescription + weightURL
	if salary != nil {
		confidence += weightSalary
	}
	if typeMatched {
		confidence += weightType
	}
	if posted != nil {
		confidence += weightDate
	}
	confidence = math.Round(confidence*100) / 100

	listing := &jobs.Listing{
		ID:             jobs.ListingID(title, company, location, link),
		Title:          title,
		Company:        company,
		Location:       location,
		Description:    description,
		Salary:         salary,
		EmploymentType: employment,
		Remote:         remote,
		PostedDate:     posted,
		Source: jobs.Provenance{
			Site:      site,
			URL:       link,
			ScrapedAt: now,
		},
		Metadata: jobs.Metadata{
			Confidence: confidence,
			RawData: map[string]any{
				"pageUrl":        raw.PageURL,
				"cardIndex":      raw.Index,
				"salaryText":     raw.Salary,
				"dateText":       raw.Date,
				"employmentText": raw.EmploymentType,
			},
		},
	}
	return listing, nil
}

// Ordered so narrower tokens win before the broad full-time default.
var employmentVocab = []struct {
	token string
	value jobs.EmploymentType
}{
	{"part-time", jobs.TypePartTime},
	{"part time", jobs.TypePartTime},
	{"internship", jobs.TypeInternship},
	{"intern", jobs.TypeInternship},
	{"freelance", jobs.TypeFreelance},
	{"contract", jobs.TypeContract},
	{"temporary", jobs.TypeTemporary},
	{"temp", jobs.TypeTemporary},
	{"full-time", jobs.TypeFullTime},
	{"full time", jobs.TypeFullTime},
}

// inferEmploymentType matches the fixed vocabulary against the explicit
// employment text first, then the description. The second return reports
// whether a token matched (a defaulted type does not raise confidence).
func inferEmploymentType(explicit, description string) (jobs.EmploymentType, bool) {
	for _, haystack := range []string{strings.ToLower(explicit), strings.ToLower(description)} {
		if haystack == "" {
			continue
		}
		for _, entry := range employmentVocab {
			if strings.Contains(haystack, entry.token) {
				return entry.value, true
			}
		}
	}
	return jobs.TypeFullTime, false
}

var remoteKeywords = []string{
	"remote",
	"work from home",
	"wfh",
	"anywhere",
	"fully distributed",
}

func inferRemote(location, description string) bool {
	for _, haystack := range []string{strings.ToLower(location), strings.ToLower(description)} {
		for _, kw := range remoteKeywords {
			if strings.Contains(haystack, kw) {
				return true
			}
		}
	}
	return false
}
