// Package tier defines the tiered memory record model and the Store
// interface for persisting records at three fidelity levels.
package tier

import "time"

// Level identifies one of the three fidelity tiers of a record.
type Level int

const (
	// Short is the lowest-fidelity tier: a bounded digest of the record.
	Short Level = iota
	// Overview is the middle tier: key points and section summaries.
	Overview
	// Full is the canonical, lossless content. Always present.
	Full
)

// String returns the wire name of the level ("short", "overview", "full").
func (l Level) String() string {
	switch l {
	case Short:
		return "short"
	case Overview:
		return "overview"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// ParseLevel maps a wire name to a Level. The second return is false for
// unrecognized names.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "short":
		return Short, true
	case "overview":
		return Overview, true
	case "full":
		return Full, true
	default:
		return 0, false
	}
}

// Record is one logical unit of remembered content, identified by a stable
// key (typically a date stamp or topic slug).
//
// FullContent is always present and never derived. ShortDigest and Overview,
// when present, are deterministic functions of FullContent at generation
// time. Tier presence is monotonic: a record with a ShortDigest always has
// FullContent; it need not have an Overview.
type Record struct {
	Key         string
	FullContent string
	ShortDigest string
	Overview    string
	CreatedAt   time.Time
	SourceSize  int
}

// Content returns the text stored at the given level and whether that tier
// is present. Full is present on every valid record.
func (r Record) Content(l Level) (string, bool) {
	switch l {
	case Short:
		return r.ShortDigest, r.ShortDigest != ""
	case Overview:
		return r.Overview, r.Overview != ""
	default:
		return r.FullContent, r.FullContent != ""
	}
}

// Size returns the stored size in bytes of the given tier (0 if absent).
func (r Record) Size(l Level) int {
	content, _ := r.Content(l)
	return len(content)
}

// Levels returns the tiers present on the record, lowest fidelity first.
func (r Record) Levels() []Level {
	var levels []Level
	for _, l := range []Level{Short, Overview, Full} {
		if _, ok := r.Content(l); ok {
			levels = append(levels, l)
		}
	}
	return levels
}
