package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeAgo = regexp.MustCompile(`(?i)(\d+)\+?\s*(minute|hour|day|week|month)s?\s*ago`)

// Absolute layouts tried in order after the relative forms.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
}

// ParsePostedDate recognizes relative forms ("today", "3 days ago") against
// the supplied reference time, then falls back to generic layout parsing.
// Unparseable text yields nil, never an error.
func ParsePostedDate(text string, now time.Time) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "today"), strings.Contains(lower, "just now"):
		t := now
		return &t
	case strings.Contains(lower, "yesterday"):
		t := now.AddDate(0, 0, -1)
		return &t
	}

	if m := relativeAgo.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil
		}
		var t time.Time
		switch m[2] {
		case "minute":
			t = now.Add(-time.Duration(n) * time.Minute)
		case "hour":
			t = now.Add(-time.Duration(n) * time.Hour)
		case "day":
			t = now.AddDate(0, 0, -n)
		case "week":
			t = now.AddDate(0, 0, -7*n)
		case "month":
			t = now.AddDate(0, -n, 0)
		}
		return &t
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
