package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
http:
  timeout_seconds: 45
  max_retries: 4
  requests_per_minute: 12
  burst_limit: 3
headless:
  enabled: true
  max_parallel: 2
  nav_timeout_seconds: 30
  body_threshold: 4096
dedup:
  fast_threshold: 250
  use_description: true
storage:
  gcs_bucket: bucket
  prefix: snapshots
logging:
  development: false
sources:
  - id: board-a
    base_url: https://board-a.example.com
    search_path: /jobs
    params:
      keywords: q
      location: l
    rules:
      card: ".job-card"
      title: ".title"
      company: ".company"
      location: ".location"
      link: "a.title-link"
      next: "a.next"
    pagination:
      scheme: page
      param: page
      start_page: 1
      max_pages: 5
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Dedup.FastThreshold != 250 || !cfg.Dedup.UseDescription {
		t.Fatalf("expected dedup overrides to apply: %+v", cfg.Dedup)
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("expected one source, got %d", len(cfg.Sources))
	}
	src := cfg.Sources[0]
	if src.ID != "board-a" || src.Rules.Card != ".job-card" {
		t.Fatalf("expected source rules to be loaded: %+v", src)
	}
	if src.Params["keywords"] != "q" {
		t.Fatalf("expected param mapping to be loaded: %+v", src.Params)
	}
	if src.Pagination.Scheme != "page" || src.Pagination.MaxPages != 5 {
		t.Fatalf("expected pagination to be loaded: %+v", src.Pagination)
	}
	// Per-source zero values inherit the global HTTP section.
	if src.Timeout != 45*time.Second {
		t.Fatalf("expected source timeout default 45s, got %v", src.Timeout)
	}
	if src.Retries != 4 || src.RequestsPerMinute != 12 || src.BurstLimit != 3 {
		t.Fatalf("expected source limits to inherit http config: %+v", src)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.HTTP.RequestsPerMinute != 30 || cfg.HTTP.BurstLimit != 5 {
		t.Fatalf("expected default rate limits: %+v", cfg.HTTP)
	}
	if cfg.Dedup.FastThreshold != 500 {
		t.Fatalf("expected default fast threshold, got %d", cfg.Dedup.FastThreshold)
	}
}

func TestSourceDefaultsBackfillMaxPages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
sources:
  - id: board-a
    base_url: https://board-a.example.com
    rules:
      card: ".job-card"
    pagination:
      scheme: next
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Sources[0].Pagination.MaxPages; got != jobs.DefaultMaxPages {
		t.Fatalf("expected max pages default %d, got %d", jobs.DefaultMaxPages, got)
	}
}

func TestValidateRejectsBadSources(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing id",
			yaml: `
sources:
  - base_url: https://example.com
    rules:
      card: ".card"
`,
			want: "id must be set",
		},
		{
			name: "missing card rule",
			yaml: `
sources:
  - id: board-a
    base_url: https://example.com
`,
			want: "rules.card",
		},
		{
			name: "duplicate ids",
			yaml: `
sources:
  - id: board-a
    base_url: https://example.com
    rules:
      card: ".card"
  - id: board-a
    base_url: https://other.example.com
    rules:
      card: ".card"
`,
			want: "duplicate source id",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidatePubSubPairing(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.PubSub.ProjectID = "proj"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for project without topic")
	}
	cfg.PubSub.TopicName = "topic"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected paired pubsub config to validate, got %v", err)
	}
}
