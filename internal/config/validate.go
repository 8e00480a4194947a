package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/flemzord/tiermem/internal/core"
)

// Modes accepted by memory.mode.
var validModes = []string{"hybrid", "aggressive", "full"}

// Log levels accepted by memory.monitoring.log_level.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the structural validity of a Config.
// It verifies the version field, the memory section bounds, and that all
// referenced module IDs exist in the registry. All problems are reported
// together via a joined error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, validateMemory(&cfg.Memory)...)

	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
		}
	}

	return errors.Join(errs...)
}

func validateMemory(m *MemoryConfig) []error {
	var errs []error

	if !slices.Contains(validModes, m.Mode) {
		errs = append(errs, fmt.Errorf("config: memory.mode %q is not one of %v", m.Mode, validModes))
	}

	if m.MinConfidence < 0 || m.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("config: memory.min_confidence %v must be within [0,1]", m.MinConfidence))
	}

	if m.Layers.ShortMaxChars <= 0 {
		errs = append(errs, errors.New("config: memory.layers.short_max_chars must be positive"))
	}
	if m.Layers.OverviewMaxChars <= 0 {
		errs = append(errs, errors.New("config: memory.layers.overview_max_chars must be positive"))
	}
	if m.Layers.ShortMaxChars > 0 && m.Layers.OverviewMaxChars > 0 &&
		m.Layers.ShortMaxChars > m.Layers.OverviewMaxChars {
		errs = append(errs, errors.New("config: memory.layers.short_max_chars must not exceed overview_max_chars"))
	}
	if !m.Layers.FullPreserveOriginal {
		errs = append(errs, errors.New("config: memory.layers.full_preserve_original must be true, the full tier is never lossy"))
	}

	if m.Cache.Enabled && m.Cache.TTLSeconds <= 0 {
		errs = append(errs, errors.New("config: memory.cache.ttl_seconds must be positive when the cache is enabled"))
	}

	if !slices.Contains(validLogLevels, m.Monitoring.LogLevel) {
		errs = append(errs, fmt.Errorf("config: memory.monitoring.log_level %q is not one of %v", m.Monitoring.LogLevel, validLogLevels))
	}

	return errs
}
