package retrieval

import (
	"github.com/flemzord/tiermem/internal/classify"
	"github.com/flemzord/tiermem/internal/tier"
)

// Retrieval modes.
const (
	// ModeHybrid serves the policy tier but escalates on low confidence.
	ModeHybrid = "hybrid"
	// ModeAggressive serves the policy tier unconditionally.
	ModeAggressive = "aggressive"
	// ModeFull always serves full content.
	ModeFull = "full"
)

// policyTier maps a query category to the cheapest tier expected to answer
// it: administrative queries read the digest, factual ones the overview, and
// anything requiring reasoning or generation gets full content.
func policyTier(cat classify.Category) tier.Level {
	switch cat {
	case classify.Administrative:
		return tier.Short
	case classify.Factual:
		return tier.Overview
	default:
		return tier.Full
	}
}

// selectTier applies the mode, the optimization gate, and the confidence
// escalation to produce the target tier for a classified query.
func selectTier(c classify.Classification, mode string, optimize bool, minConfidence float64) tier.Level {
	if !optimize || mode == ModeFull {
		return tier.Full
	}

	level := policyTier(c.Category)

	// A shaky classification escalates one tier toward full so a
	// misclassified query still gets a usable answer.
	if mode == ModeHybrid && c.Confidence < minConfidence && level < tier.Full {
		level++
	}

	return level
}

// serveTier walks from the target tier toward full until it finds a tier
// present on the record. Full is always present on a valid record, so the
// walk terminates.
func serveTier(rec tier.Record, target tier.Level) (string, tier.Level) {
	for l := target; l < tier.Full; l++ {
		if content, ok := rec.Content(l); ok {
			return content, l
		}
	}
	content, _ := rec.Content(tier.Full)
	return content, tier.Full
}
