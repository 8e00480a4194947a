package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiermem.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `version: "1"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Memory.Mode != "hybrid" {
		t.Errorf("mode = %q, want hybrid", cfg.Memory.Mode)
	}
	if cfg.Memory.MinConfidence != 0.6 {
		t.Errorf("min_confidence = %v, want 0.6", cfg.Memory.MinConfidence)
	}
	if cfg.Memory.Layers.ShortMaxChars != 100 || cfg.Memory.Layers.OverviewMaxChars != 500 {
		t.Errorf("layers = %+v", cfg.Memory.Layers)
	}
	if !cfg.Memory.TokenOptimization || !cfg.Memory.AutoSummarize {
		t.Error("optimization booleans should default to true")
	}
	if !cfg.Memory.Layers.FullPreserveOriginal {
		t.Error("full_preserve_original should default to true")
	}
	if !cfg.Memory.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
	if cfg.Memory.Cache.TTLSeconds != 300 {
		t.Errorf("ttl_seconds = %d, want 300", cfg.Memory.Cache.TTLSeconds)
	}
	if cfg.Memory.Monitoring.LogLevel != "info" {
		t.Errorf("log_level = %q, want info", cfg.Memory.Monitoring.LogLevel)
	}
	if cfg.Memory.Monitoring.StatsPath != "stats.json" {
		t.Errorf("stats_path = %q, want stats.json", cfg.Memory.Monitoring.StatsPath)
	}
}

func TestLoad_ExplicitFalseBeatsDefault(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `version: "1"
memory:
  token_optimization: false
  auto_summarize: false
  cache:
    enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Memory.TokenOptimization || cfg.Memory.AutoSummarize || cfg.Memory.Cache.Enabled {
		t.Errorf("explicit false overridden: %+v", cfg.Memory)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "version: [unclosed")
	if _, err := Load(path); err == nil {
		t.Error("invalid YAML should error")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TIERMEM_TEST_MODE", "aggressive")

	path := writeConfig(t, `version: "1"
memory:
  mode: ${TIERMEM_TEST_MODE}
  monitoring:
    log_level: ${TIERMEM_TEST_LEVEL:-warn}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Memory.Mode != "aggressive" {
		t.Errorf("mode = %q, want env value", cfg.Memory.Mode)
	}
	if cfg.Memory.Monitoring.LogLevel != "warn" {
		t.Errorf("log_level = %q, want the :- default", cfg.Memory.Monitoring.LogLevel)
	}
}

func TestLoad_EnvValueBeatsDefault(t *testing.T) {
	t.Setenv("TIERMEM_TEST_LEVEL", "debug")

	path := writeConfig(t, `version: "1"
memory:
  monitoring:
    log_level: ${TIERMEM_TEST_LEVEL:-warn}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Memory.Monitoring.LogLevel != "debug" {
		t.Errorf("log_level = %q, want the env value", cfg.Memory.Monitoring.LogLevel)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `version: "1"
memory:
  mode: ${TIERMEM_DEFINITELY_UNSET_VAR}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("unresolved variable should error")
	}
	if !strings.Contains(err.Error(), "TIERMEM_DEFINITELY_UNSET_VAR") {
		t.Errorf("error should name the variable: %v", err)
	}
}
