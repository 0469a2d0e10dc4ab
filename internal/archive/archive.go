// Package archive persists raw markup snapshots of fetched pages so a run's
// provenance can be replayed without hitting the source again.
package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"time"
)

// Store writes raw artifacts and returns a URI.
type Store interface {
	PutObject(ctx context.Context, objectPath string, contentType string, r io.Reader) (string, error)
}

// ObjectPath builds the snapshot key for a page: pages/<date>/<urlhash>.html.
func ObjectPath(prefix, rawURL string, fetchedAt time.Time) string {
	sum := sha256.Sum256([]byte(rawURL))
	if prefix == "" {
		prefix = "pages"
	}
	return path.Join(
		prefix,
		fetchedAt.UTC().Format("2006-01-02"),
		fmt.Sprintf("%s.html", hex.EncodeToString(sum[:])),
	)
}
