package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

func TestMergeKeepsHigherConfidence(t *testing.T) {
	t.Parallel()

	canonical := listing("Go Engineer", "Acme", "Austin, TX", "https://a.example.com/1")
	canonical.Metadata.Confidence = 0.85
	dup := listing("Go Engineer", "Acme", "Austin, TX", "https://b.example.com/2")
	dup.Metadata.Confidence = 0.95

	Merge(canonical, dup)
	require.Equal(t, 0.95, canonical.Metadata.Confidence)

	// A poorer duplicate never lowers it.
	worse := listing("Go Engineer", "Acme", "Austin, TX", "https://c.example.com/3")
	worse.Metadata.Confidence = 0.5
	Merge(canonical, worse)
	require.Equal(t, 0.95, canonical.Metadata.Confidence)
}

func TestMergeBackfillsEmptyFields(t *testing.T) {
	t.Parallel()

	canonical := listing("Go Engineer", "Acme", "Austin, TX", "https://a.example.com/1")
	dup := listing("Go Engineer", "Acme", "Austin, TX", "https://b.example.com/2")
	dup.Description = "Build crawlers."
	dup.Salary = &jobs.Salary{Min: 90000, Max: 120000, Currency: "USD", Period: jobs.PeriodYearly}
	dup.Requirements = []string{"Go", "Postgres"}
	dup.Benefits = []string{"Health"}

	Merge(canonical, dup)
	require.Equal(t, "Build crawlers.", canonical.Description)
	require.Equal(t, dup.Salary, canonical.Salary)
	require.Equal(t, []string{"Go", "Postgres"}, canonical.Requirements)
	require.Equal(t, []string{"Health"}, canonical.Benefits)
}

func TestMergeDoesNotOverwritePopulatedFields(t *testing.T) {
	t.Parallel()

	canonical := listing("Go Engineer", "Acme", "Austin, TX", "https://a.example.com/1")
	canonical.Description = "Original description."
	canonical.Salary = &jobs.Salary{Min: 80000, Max: 100000, Currency: "USD", Period: jobs.PeriodYearly}
	dup := listing("Go Engineer", "Acme", "Austin, TX", "https://b.example.com/2")
	dup.Description = "Different description."
	dup.Salary = &jobs.Salary{Min: 1, Max: 2, Currency: "USD", Period: jobs.PeriodYearly}

	Merge(canonical, dup)
	require.Equal(t, "Original description.", canonical.Description)
	require.Equal(t, 80000.0, canonical.Salary.Min)
}

func TestMergeUnionsTags(t *testing.T) {
	t.Parallel()

	canonical := listing("Go Engineer", "Acme", "Austin, TX", "https://a.example.com/1")
	canonical.Tags = []string{"go", "backend"}
	dup := listing("Go Engineer", "Acme", "Austin, TX", "https://b.example.com/2")
	dup.Tags = []string{"backend", "crawler"}

	Merge(canonical, dup)
	require.Equal(t, []string{"go", "backend", "crawler"}, canonical.Tags)
}

func TestMergeKeepsLaterPostedDate(t *testing.T) {
	t.Parallel()

	older := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	newer := older.AddDate(0, 0, 5)

	canonical := listing("Go Engineer", "Acme", "Austin, TX", "https://a.example.com/1")
	canonical.PostedDate = &older
	dup := listing("Go Engineer", "Acme", "Austin, TX", "https://b.example.com/2")
	dup.PostedDate = &newer

	Merge(canonical, dup)
	require.True(t, canonical.PostedDate.Equal(newer))

	// A missing duplicate date leaves the canonical date alone.
	undated := listing("Go Engineer", "Acme", "Austin, TX", "https://c.example.com/3")
	Merge(canonical, undated)
	require.True(t, canonical.PostedDate.Equal(newer))
}

func TestMergeRecordsDuplicateSites(t *testing.T) {
	t.Parallel()

	canonical := listing("Go Engineer", "Acme", "Austin, TX", "https://a.example.com/1")
	dup := listing("Go Engineer", "Acme", "Austin, TX", "https://b.example.com/2")
	dup.Source.Site = "board-b"
	dup.Source.MergedSites = []string{"board-c"}

	Merge(canonical, dup)
	require.Equal(t, []string{"board-b", "board-c"}, canonical.Source.MergedSites)

	// Merging again adds nothing, and the canonical's own site never joins.
	again := listing("Go Engineer", "Acme", "Austin, TX", "https://d.example.com/4")
	again.Source.Site = "board-b"
	Merge(canonical, again)
	require.Equal(t, []string{"board-b", "board-c"}, canonical.Source.MergedSites)

	self := listing("Go Engineer", "Acme", "Austin, TX", "https://e.example.com/5")
	self.Source.Site = canonical.Source.Site
	Merge(canonical, self)
	require.Equal(t, []string{"board-b", "board-c"}, canonical.Source.MergedSites)
}
