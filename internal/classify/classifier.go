// Package classify maps free-text queries to an intent category that drives
// tier selection. Matching is keyword-based with a strict priority order:
// administrative cues win over factual, factual over analytical, and
// creative is the default when nothing matches. The ordering is a deliberate
// tie-break — an ambiguous query is served the cheaper interpretation first.
package classify

import (
	"strings"
	"unicode"
)

// Category is the inferred intent of a query.
type Category string

const (
	// Administrative queries ask about status, schedules, or dates and
	// are answerable from the short digest.
	Administrative Category = "administrative"
	// Factual queries ask who/what/when/where and are answerable from
	// the overview tier.
	Factual Category = "factual"
	// Analytical queries require reasoning over detail.
	Analytical Category = "analytical"
	// Creative is the default category for open-ended queries; it always
	// carries the lowest confidence.
	Creative Category = "creative"
)

// Classification is the transient result of classifying one query.
// It is never persisted.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

// Cue lists per category. Checked in priority order; the first category with
// any match wins.
var (
	administrativeCues = []string{
		"status", "schedule", "progress", "summary", "check",
		"report", "today", "date", "time", "when is", "deadline",
	}
	factualCues = []string{
		"who", "what", "when", "where", "which", "how many",
		"how much", "list", "name", "did i", "do i have",
	}
	analyticalCues = []string{
		"why", "analyze", "analyse", "compare", "versus", "vs",
		"reason", "cause", "evaluate", "trade-off", "tradeoff",
		"pros and cons", "difference between",
	}
)

// Confidence constants: base is the score for a single matched cue, step is
// added per extra cue, and the cap keeps confidence within [0,1].
const (
	defaultConfidence = 0.3
	baseConfidence    = 0.6
	confidenceStep    = 0.15
)

// Classify returns the intent category for a query plus a confidence score
// in [0,1]. Confidence grows monotonically with the number of matched cues
// and is capped at 1.0. Queries matching nothing default to Creative with
// the lowest confidence.
func Classify(query string) Classification {
	q := normalize(query)

	for _, candidate := range []struct {
		category Category
		cues     []string
	}{
		{Administrative, administrativeCues},
		{Factual, factualCues},
		{Analytical, analyticalCues},
	} {
		if n := countCues(q, candidate.cues); n > 0 {
			return Classification{
				Category:   candidate.category,
				Confidence: confidence(n),
			}
		}
	}

	return Classification{Category: Creative, Confidence: defaultConfidence}
}

// normalize lower-cases the query and replaces punctuation with spaces so
// cues match on word boundaries only ("did i" must not fire inside "did it",
// nor "date" inside "updates"). Hyphens survive for cues like "trade-off".
func normalize(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 2)
	b.WriteByte(' ')
	for _, r := range strings.ToLower(query) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}

func countCues(q string, cues []string) int {
	n := 0
	for _, cue := range cues {
		if strings.Contains(q, " "+cue+" ") {
			n++
		}
	}
	return n
}

func confidence(matched int) float64 {
	c := baseConfidence + confidenceStep*float64(matched-1)
	if c > 1.0 {
		c = 1.0
	}
	return c
}
