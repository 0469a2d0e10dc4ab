// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/razor303Jc/Job-search-sub002/internal/jobs"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	HTTP     HTTPConfig             `mapstructure:"http"`
	Headless HeadlessConfig         `mapstructure:"headless"`
	Dedup    DedupConfig            `mapstructure:"dedup"`
	Storage  StorageConfig          `mapstructure:"storage"`
	DB       DBConfig               `mapstructure:"db"`
	PubSub   PubSubConfig           `mapstructure:"pubsub"`
	Logging  LoggingConfig          `mapstructure:"logging"`
	Sources  []jobs.SourceDescriptor `mapstructure:"sources"`
}

// ServerConfig controls the health/metrics HTTP listener.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// HTTPConfig configures fetch timeout and retry behavior applied to sources
// that do not override them.
type HTTPConfig struct {
	TimeoutSeconds    int `mapstructure:"timeout_seconds"`
	MaxRetries        int `mapstructure:"max_retries"`
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	BurstLimit        int `mapstructure:"burst_limit"`
}

// HeadlessConfig configures the headless rendering fallback.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	// BodyThreshold is the byte length below which a static response is
	// considered markup-starved and promoted to rendering.
	BodyThreshold int `mapstructure:"body_threshold"`
}

// DedupConfig tunes the deduplication pass.
type DedupConfig struct {
	FastThreshold  int  `mapstructure:"fast_threshold"`
	UseDescription bool `mapstructure:"use_description"`
}

// StorageConfig sets destinations for raw page snapshots. GCSBucket wins
// when both a bucket and a local directory are configured.
type StorageConfig struct {
	GCSBucket string `mapstructure:"gcs_bucket"`
	LocalDir  string `mapstructure:"local_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// DBConfig controls access to the relational database. An empty DSN runs the
// scraper with the in-memory store.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

// PubSubConfig holds metadata for progress event publishing.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applySourceDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.requests_per_minute", 30)
	v.SetDefault("http.burst_limit", 5)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.body_threshold", 2048)
	v.SetDefault("dedup.fast_threshold", 500)
	v.SetDefault("dedup.use_description", false)
	v.SetDefault("storage.prefix", "pages")
	v.SetDefault("logging.development", true)
}

// applySourceDefaults fills per-source zero values from the global HTTP
// section so descriptors stay complete once handed to the pipeline.
func (c *Config) applySourceDefaults() {
	for i := range c.Sources {
		src := &c.Sources[i]
		if src.Timeout <= 0 {
			src.Timeout = time.Duration(c.HTTP.TimeoutSeconds) * time.Second
		}
		if src.Retries <= 0 {
			src.Retries = c.HTTP.MaxRetries
		}
		if src.RequestsPerMinute <= 0 {
			src.RequestsPerMinute = c.HTTP.RequestsPerMinute
		}
		if src.BurstLimit <= 0 {
			src.BurstLimit = c.HTTP.BurstLimit
		}
		if src.Pagination.MaxPages <= 0 {
			src.Pagination.MaxPages = jobs.DefaultMaxPages
		}
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.PubSub.ProjectID != "" && c.PubSub.TopicName == "" {
		return fmt.Errorf("pubsub.topic_name must be set when pubsub.project_id is set")
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for _, src := range c.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[].id must be set")
		}
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
		if src.BaseURL == "" {
			return fmt.Errorf("source %s: base_url must be set", src.ID)
		}
		if src.Rules.Card == "" {
			return fmt.Errorf("source %s: rules.card must be set", src.ID)
		}
	}
	return nil
}
