package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// Query parameter names boards commonly use for an embedded posting ID.
var embeddedIDParams = []string{"id", "jobid", "job_id", "jk", "vacancy", "posting"}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	numericSegment = regexp.MustCompile(`^\d{5,}$`)
)

// ListingID derives a deterministic identifier for a posting. When the source
// URL embeds a posting ID it is used (scoped to the host so IDs never collide
// across boards); otherwise the ID hashes the normalized title/company/
// location triple. Two scrapes of the same posting yield the same ID despite
// whitespace and casing differences.
func ListingID(title, company, location, sourceURL string) string {
	if host, embedded := embeddedID(sourceURL); embedded != "" {
		return digest("url", host, embedded)
	}
	return digest("fields", canonField(title), canonField(company), canonField(location))
}

func embeddedID(sourceURL string) (host, id string) {
	u, err := url.Parse(strings.TrimSpace(sourceURL))
	if err != nil || u.Host == "" {
		return "", ""
	}
	host = strings.ToLower(u.Hostname())
	q := u.Query()
	for _, key := range embeddedIDParams {
		if v := q.Get(key); v != "" {
			return host, v
		}
	}
	// Long numeric trailing path segments are treated as posting IDs.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 {
		last := segments[len(segments)-1]
		if numericSegment.MatchString(last) {
			return host, last
		}
	}
	return "", ""
}

func canonField(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

func digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:24]
}
