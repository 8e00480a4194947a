package metrics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Period selects the report window.
type Period string

// Report periods.
const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod maps a wire name to a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Daily, Weekly, Monthly:
		return Period(s), nil
	default:
		return "", fmt.Errorf("metrics: unknown report period %q", s)
	}
}

func (p Period) window() time.Duration {
	switch p {
	case Weekly:
		return 7 * 24 * time.Hour
	case Monthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Format selects the report rendering.
type Format string

// Report formats.
const (
	Structured Format = "structured"
	Text       Format = "text"
)

// ParseFormat maps a wire name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case Structured, Text:
		return Format(s), nil
	default:
		return "", fmt.Errorf("metrics: unknown report format %q", s)
	}
}

// ReportDocument is the structured report payload. The text format renders
// the same data.
type ReportDocument struct {
	Period        Period         `json:"period"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Summary       Summary        `json:"summary"`
	WindowQueries int            `json:"window_queries"`
	WindowSaved   float64        `json:"window_tokens_saved"`
	Recent        []HistoryEntry `json:"recent,omitempty"`
}

// Report renders a periodic report. The summary covers all recorded
// history; the window counters cover only entries inside the period.
func (a *Aggregator) Report(period Period, format Format) (string, error) {
	doc := a.buildReport(period)

	switch format {
	case Text:
		return renderText(doc), nil
	case Structured:
		raw, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return "", fmt.Errorf("metrics: marshal report: %w", err)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("metrics: unknown report format %q", format)
	}
}

func (a *Aggregator) buildReport(period Period) ReportDocument {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	cutoff := now.Add(-period.window())

	doc := ReportDocument{
		Period:      period,
		GeneratedAt: now,
		Summary:     a.summaryLocked(),
	}
	for _, e := range a.history {
		if e.RecordedAt.Before(cutoff) {
			continue
		}
		doc.WindowQueries++
		doc.WindowSaved += e.TokensSaved
		doc.Recent = append(doc.Recent, e)
	}
	if len(doc.Recent) > 10 {
		doc.Recent = doc.Recent[len(doc.Recent)-10:]
	}
	return doc
}

func renderText(doc ReportDocument) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Memory performance report (%s)\n", doc.Period)
	fmt.Fprintf(&b, "Generated: %s\n\n", doc.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total queries:       %d\n", doc.Summary.TotalQueries)
	fmt.Fprintf(&b, "Average saving rate: %.1f%%\n", doc.Summary.AverageSavingRate*100)
	fmt.Fprintf(&b, "Total tokens saved:  %.0f\n", doc.Summary.TotalTokensSaved)
	fmt.Fprintf(&b, "Queries in window:   %d (%.0f tokens saved)\n", doc.WindowQueries, doc.WindowSaved)

	if len(doc.Summary.PerCategory) > 0 {
		b.WriteString("\nQuery categories:\n")
		for _, cat := range []string{"administrative", "factual", "analytical", "creative"} {
			if n, ok := doc.Summary.PerCategory[cat]; ok {
				fmt.Fprintf(&b, "  %-15s %d\n", cat, n)
			}
		}
	}

	if len(doc.Recent) > 0 {
		b.WriteString("\nRecent queries:\n")
		for _, e := range doc.Recent {
			fmt.Fprintf(&b, "  [%s] %-15s saved=%.0f (%.0f%%) %q\n",
				e.RecordedAt.Format("15:04:05"), e.Category,
				e.TokensSaved, e.SavingRate*100, e.Query)
		}
	}

	return b.String()
}
