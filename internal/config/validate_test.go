package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func validConfig() *Config {
	return &Config{
		Version: "1",
		Memory: MemoryConfig{
			Mode:              "hybrid",
			TokenOptimization: true,
			MinConfidence:     0.6,
			Layers: LayersConfig{
				ShortMaxChars:        100,
				OverviewMaxChars:     500,
				FullPreserveOriginal: true,
			},
			Cache:      CacheConfig{Enabled: true, TTLSeconds: 300},
			Monitoring: MonitoringConfig{LogLevel: "info"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	t.Parallel()

	if err := Validate(validConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			"missing version",
			func(c *Config) { c.Version = "" },
			"version field is required",
		},
		{
			"unsupported version",
			func(c *Config) { c.Version = "2" },
			"unsupported version",
		},
		{
			"bad mode",
			func(c *Config) { c.Memory.Mode = "turbo" },
			"memory.mode",
		},
		{
			"confidence out of range",
			func(c *Config) { c.Memory.MinConfidence = 1.5 },
			"min_confidence",
		},
		{
			"non-positive short chars",
			func(c *Config) { c.Memory.Layers.ShortMaxChars = 0 },
			"short_max_chars must be positive",
		},
		{
			"short exceeds overview",
			func(c *Config) { c.Memory.Layers.ShortMaxChars = 2000 },
			"must not exceed overview_max_chars",
		},
		{
			"lossy full tier",
			func(c *Config) { c.Memory.Layers.FullPreserveOriginal = false },
			"full_preserve_original",
		},
		{
			"cache enabled without ttl",
			func(c *Config) { c.Memory.Cache.TTLSeconds = 0 },
			"ttl_seconds",
		},
		{
			"bad log level",
			func(c *Config) { c.Memory.Monitoring.LogLevel = "verbose" },
			"log_level",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tc.wantMsg)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Version = ""
	cfg.Memory.Mode = "turbo"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "version") || !strings.Contains(msg, "memory.mode") {
		t.Errorf("joined error missing a problem: %v", err)
	}
}

func TestValidate_UnknownModule(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Modules = map[string]yaml.Node{"no.such.module": {}}

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown module") {
		t.Errorf("got %v, want unknown module error", err)
	}
}
