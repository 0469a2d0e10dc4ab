package dedup

import (
	"net/url"
	"strings"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Thresholds holds the per-field gates and composite cutoff for accurate
// mode. A field contributes to the composite only when it clears its gate.
type Thresholds struct {
	Title       float64
	Company     float64
	Location    float64
	Description float64
	Composite   float64
}

// DefaultThresholds mirror the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Title:       0.85,
		Company:     0.90,
		Location:    0.85,
		Description: 0.70,
		Composite:   0.80,
	}
}

// Field weights in the composite score.
const (
	weightTitle       = 0.4
	weightCompany     = 0.3
	weightLocation    = 0.2
	weightDescription = 0.1
)

// Compare scores candidate against listing. An exact URL match after
// tracking-parameter stripping short-circuits to 1.0 regardless of other
// fields; this path is deliberately kept outside the weighted sum.
func Compare(listing, candidate *jobs.Listing, th Thresholds, useDescription bool) jobs.SimilarityResult {
	res := jobs.SimilarityResult{Candidate: candidate}

	if u := CleanURL(listing.Source.URL); u != "" && u == CleanURL(candidate.Source.URL) {
		res.Score = 1.0
		res.MatchedFields = []string{"url"}
		return res
	}

	type fieldScore struct {
		name      string
		sim       float64
		threshold float64
		weight    float64
	}
	scores := []fieldScore{
		{"title", stringSimilarity(normalizeTitle(listing.Title), normalizeTitle(candidate.Title)), th.Title, weightTitle},
		{"company", stringSimilarity(normalizeCompany(listing.Company), normalizeCompany(candidate.Company)), th.Company, weightCompany},
		{"location", stringSimilarity(normalizeLocation(listing.Location), normalizeLocation(candidate.Location)), th.Location, weightLocation},
	}
	if useDescription {
		scores = append(scores, fieldScore{
			"description",
			stringSimilarity(normalizeDescription(listing.Description), normalizeDescription(candidate.Description)),
			th.Description,
			weightDescription,
		})
	}

	for _, fs := range scores {
		if fs.sim >= fs.threshold {
			res.Score += fs.weight * fs.sim
			res.MatchedFields = append(res.MatchedFields, fs.name)
		}
	}
	return res
}

// IsDuplicate applies the admission rule: at least two fields cleared their
// thresholds and the composite exceeds the cutoff. The URL short-circuit
// (score 1.0, single matched field) also qualifies.
func IsDuplicate(res jobs.SimilarityResult, th Thresholds) bool {
	if len(res.MatchedFields) == 1 && res.MatchedFields[0] == "url" && res.Score == 1.0 {
		return true
	}
	return len(res.MatchedFields) >= 2 && res.Score > th.Composite
}

// Tracking parameters stripped before URL comparison.
var trackingParams = []string{"ref", "source"}

// CleanURL strips tracking parameters (utm_*, ref, source) and the fragment,
// and normalizes scheme/host casing. An unparseable URL yields "".
func CleanURL(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	for _, key := range trackingParams {
		q.Del(key)
	}
	u.RawQuery = q.Encode()
	return strings.TrimSuffix(u.String(), "/")
}

// stringSimilarity is normalized edit-distance similarity in [0,1].
func stringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
