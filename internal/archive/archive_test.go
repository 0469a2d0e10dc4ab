package archive

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	t.Parallel()

	fetchedAt := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.FixedZone("CST", -6*3600))

	p := ObjectPath("snapshots", "https://board.example.com/jobs?page=1", fetchedAt)
	require.True(t, strings.HasPrefix(p, "snapshots/2026-03-11/"), "date segment uses UTC, got %s", p)
	require.True(t, strings.HasSuffix(p, ".html"))

	// Same URL and day hash to the same key; different URLs do not.
	again := ObjectPath("snapshots", "https://board.example.com/jobs?page=1", fetchedAt.Add(time.Minute))
	require.Equal(t, p, again)
	other := ObjectPath("snapshots", "https://board.example.com/jobs?page=2", fetchedAt)
	require.NotEqual(t, p, other)
}

func TestObjectPathDefaultPrefix(t *testing.T) {
	t.Parallel()

	p := ObjectPath("", "https://board.example.com/jobs", time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))
	require.True(t, strings.HasPrefix(p, "pages/2026-03-10/"))
}
