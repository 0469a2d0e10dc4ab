// Package detector decides when a statically fetched page needs a headless
// render before extraction.
package detector

import (
	"bytes"
	"strings"
)

// Heuristic implements a handful of rule-based promotions.
type Heuristic struct {
	BodyLengthThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold == 0 {
		threshold = 2048
	}
	return &Heuristic{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte("id=\"root\""),
	[]byte("id=\"app\""),
	[]byte("data-reactroot"),
}

// ShouldPromote reports whether the static body looks script-rendered: empty,
// short with high script density, or carrying an SPA root marker.
func (h *Heuristic) ShouldPromote(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	if len(body) < h.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	scriptBytes := 0
	for {
		open := strings.Index(lower, "<script")
		if open < 0 {
			break
		}
		rest := lower[open:]
		closeIdx := strings.Index(rest, "</script>")
		if closeIdx < 0 {
			scriptBytes += len(rest)
			break
		}
		scriptBytes += closeIdx + len("</script>")
		lower = rest[closeIdx+len("</script>"):]
	}
	return float64(scriptBytes)/float64(total) > 0.5
}
