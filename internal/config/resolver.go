package config

import (
	"slices"
	"strings"
)

// Resolve returns the module IDs from the configuration in load order:
// storage modules first, since the gateway and monitor resolve the
// "tier.store" service those modules register, then everything else
// alphabetically so loading stays deterministic.
func Resolve(cfg *Config) []string {
	ids := make([]string, 0, len(cfg.Modules))
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if ra, rb := loadRank(a), loadRank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return ids
}

func loadRank(id string) int {
	if strings.HasPrefix(id, "store.") {
		return 0
	}
	return 1
}
