package dedup

import (
	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Merge folds dup into canonical. Confidence never decreases, empty optional
// fields are backfilled, tags union, the duplicate's site joins the
// provenance, and postedDate becomes the later of the two when both are
// present. The duplicate is discarded by the caller afterwards.
func Merge(canonical, dup *jobs.Listing) {
	if dup.Metadata.Confidence > canonical.Metadata.Confidence {
		canonical.Metadata.Confidence = dup.Metadata.Confidence
	}

	appendSite(canonical, dup.Source.Site)
	for _, site := range dup.Source.MergedSites {
		appendSite(canonical, site)
	}

	if canonical.Description == "" {
		canonical.Description = dup.Description
	}
	if canonical.Salary == nil {
		canonical.Salary = dup.Salary
	}
	if len(canonical.Requirements) == 0 {
		canonical.Requirements = dup.Requirements
	}
	if len(canonical.Benefits) == 0 {
		canonical.Benefits = dup.Benefits
	}
	canonical.Tags = unionTags(canonical.Tags, dup.Tags)

	if canonical.PostedDate != nil && dup.PostedDate != nil && dup.PostedDate.After(*canonical.PostedDate) {
		canonical.PostedDate = dup.PostedDate
	}
}

func appendSite(l *jobs.Listing, site string) {
	if site == "" || site == l.Source.Site {
		return
	}
	for _, existing := range l.Source.MergedSites {
		if existing == site {
			return
		}
	}
	l.Source.MergedSites = append(l.Source.MergedSites, site)
}

func unionTags(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	for _, t := range a {
		seen[t] = struct{}{}
	}
	for _, t := range b {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		a = append(a, t)
	}
	return a
}
