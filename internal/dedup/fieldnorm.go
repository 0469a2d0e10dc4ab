package dedup

import (
	"regexp"
	"strings"
)

// Tokens stripped from titles before comparison: seniority qualifiers and
// roman-numeral levels that vary across boards for the same role.
var seniorityTokens = map[string]struct{}{
	"sr": {}, "sr.": {}, "senior": {},
	"jr": {}, "jr.": {}, "junior": {},
	"lead": {}, "principal": {}, "staff": {},
	"i": {}, "ii": {}, "iii": {}, "iv": {}, "v": {},
}

// Legal-entity suffixes stripped from company names.
var legalSuffixes = map[string]struct{}{
	"inc": {}, "inc.": {}, "incorporated": {},
	"llc": {}, "llc.": {}, "ltd": {}, "ltd.": {}, "limited": {},
	"corp": {}, "corp.": {}, "corporation": {},
	"co": {}, "co.": {}, "company": {}, "gmbh": {},
}

// Work-type tokens stripped from locations.
var workTypeTokens = map[string]struct{}{
	"remote": {}, "hybrid": {}, "onsite": {}, "on-site": {},
}

// Applied per word after punctuation stripping, so dotted forms like "u.s."
// reduce to single letters and are left alone.
var countryAliases = map[string]string{
	"usa":         "united states",
	"us":          "united states",
	"uk":          "united kingdom",
	"uae":         "united arab emirates",
	"deutschland": "germany",
	"holland":     "netherlands",
}

var (
	markupTags    = regexp.MustCompile(`<[^>]*>`)
	punctuation   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

const descriptionCompareLimit = 500

func normalizeTitle(s string) string {
	return stripTokens(baseNormalize(s), seniorityTokens)
}

func normalizeCompany(s string) string {
	return stripTokens(baseNormalize(s), legalSuffixes)
}

func normalizeLocation(s string) string {
	cleaned := stripTokens(baseNormalize(s), workTypeTokens)
	words := strings.Fields(cleaned)
	for i, w := range words {
		if alias, ok := countryAliases[w]; ok {
			words[i] = alias
		}
	}
	return strings.Join(words, " ")
}

func normalizeDescription(s string) string {
	s = markupTags.ReplaceAllString(s, " ")
	s = baseNormalize(s)
	if len(s) > descriptionCompareLimit {
		s = s[:descriptionCompareLimit]
	}
	return s
}

func baseNormalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctuation.ReplaceAllString(s, " ")
	return whitespaceRun.ReplaceAllString(s, " ")
}

func stripTokens(s string, drop map[string]struct{}) string {
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if _, skip := drop[w]; skip {
			continue
		}
		kept = append(kept, w)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}
