// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for tiermem.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Memory holds the tiered-memory behavior settings.
	Memory MemoryConfig `yaml:"memory"`

	// Tracing holds optional OpenTelemetry export settings.
	Tracing *TracingConfig `yaml:"tracing,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "store.sqlite").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// MemoryConfig controls tier selection, summarization, and caching.
type MemoryConfig struct {
	// Mode selects the retrieval strategy: "hybrid" (tiered with
	// escalation), "aggressive" (tiered, no confidence escalation), or
	// "full" (always serve full content).
	Mode string `yaml:"mode"`

	// TokenOptimization gates tier reduction. When false every query is
	// served full content regardless of mode. Defaults to true.
	TokenOptimization bool `yaml:"token_optimization"`

	// AutoSummarize derives the reduced tiers at ingest time.
	// Defaults to true.
	AutoSummarize bool `yaml:"auto_summarize"`

	// MinConfidence is the classification confidence below which the
	// selected tier escalates one level toward full.
	MinConfidence float64 `yaml:"min_confidence"`

	Layers     LayersConfig     `yaml:"layers"`
	Cache      CacheConfig      `yaml:"cache"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// LayersConfig bounds the per-tier representations.
type LayersConfig struct {
	ShortMaxChars    int `yaml:"short_max_chars"`
	OverviewMaxChars int `yaml:"overview_max_chars"`

	// FullPreserveOriginal must be true: the full tier is always the
	// verbatim source content.
	FullPreserveOriginal bool `yaml:"full_preserve_original"`
}

// CacheConfig controls the query result cache.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled"`
	TTLSeconds int  `yaml:"ttl_seconds"`
}

// MonitoringConfig controls statistics collection and logging.
type MonitoringConfig struct {
	Enabled  bool   `yaml:"enabled"`
	LogLevel string `yaml:"log_level"`

	// StatsPath is where the statistics snapshot is persisted. Relative
	// paths resolve against the data directory.
	StatsPath string `yaml:"stats_path,omitempty"`
}

// TracingConfig holds OTLP export settings.
type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS on the OTLP connection.
	Insecure bool `yaml:"insecure,omitempty"`
}

// NewDefault returns a Config with the boolean fields whose documented
// default is true already set. Load unmarshals on top of it: yaml.v3 leaves
// fields absent from the document untouched, so an omitted key keeps its
// default while an explicit false wins.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Memory.TokenOptimization = true
	cfg.Memory.AutoSummarize = true
	cfg.Memory.Layers.FullPreserveOriginal = true
	cfg.Memory.Cache.Enabled = true
	cfg.Memory.Monitoring.Enabled = true
	return cfg
}

// ApplyDefaults fills unset fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Memory.Mode == "" {
		c.Memory.Mode = "hybrid"
	}
	if c.Memory.MinConfidence == 0 {
		c.Memory.MinConfidence = 0.6
	}
	if c.Memory.Layers.ShortMaxChars == 0 {
		c.Memory.Layers.ShortMaxChars = 100
	}
	if c.Memory.Layers.OverviewMaxChars == 0 {
		c.Memory.Layers.OverviewMaxChars = 500
	}
	if c.Memory.Cache.TTLSeconds == 0 {
		c.Memory.Cache.TTLSeconds = 300
	}
	if c.Memory.Monitoring.LogLevel == "" {
		c.Memory.Monitoring.LogLevel = "info"
	}
	if c.Memory.Monitoring.StatsPath == "" {
		c.Memory.Monitoring.StatsPath = "stats.json"
	}
}
