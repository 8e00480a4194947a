// Package summarize derives the short-digest and overview tiers from full
// record content. All functions are pure and deterministic: identical input
// always produces identical output, which migration idempotence and cache
// correctness depend on.
package summarize

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// fragmentSeparator joins extracted fragments in the short digest.
	fragmentSeparator = " | "

	// maxShortFragments caps how many structured fragments the short
	// digest extracts.
	maxShortFragments = 3

	// maxKeyPoints caps the key points listed in an overview.
	maxKeyPoints = 5

	// maxSections caps the sections summarized in an overview.
	maxSections = 5
)

// datePattern matches ISO-style date tokens (2026-08-24, 2026/08/24).
var datePattern = regexp.MustCompile(`\b\d{4}[-/]\d{2}[-/]\d{2}\b`)

// GenerateShort produces the short-digest tier: the first one or two
// date-like tokens and leading list items, capped at three fragments joined
// with a fixed separator and hard-truncated to maxLen. When the content has
// no structured fragments, it falls back to a plain truncation.
//
// Empty content yields an empty digest. Content shorter than maxLen still
// goes through extraction, since list items may compress it further.
func GenerateShort(content string, maxLen int) string {
	if content == "" || maxLen <= 0 {
		return ""
	}

	var fragments []string

	if date := dateFragment(content); date != "" {
		fragments = append(fragments, date)
	}

	for _, line := range splitLines(content) {
		if len(fragments) >= maxShortFragments {
			break
		}
		if item, ok := listItem(line); ok {
			fragments = append(fragments, item)
		}
	}

	if len(fragments) == 0 {
		return truncate(collapseWhitespace(content), maxLen)
	}

	return truncate(strings.Join(fragments, fragmentSeparator), maxLen)
}

// GenerateOverview produces the overview tier: up to five bullet/numbered
// key points followed by per-section one-line digests for up to five
// heading-delimited sections, hard-truncated to maxLen.
func GenerateOverview(content string, maxLen int) string {
	if content == "" || maxLen <= 0 {
		return ""
	}

	keyPoints := extractKeyPoints(content, maxKeyPoints)
	sections := splitSections(content)

	var b strings.Builder

	if len(keyPoints) > 0 {
		b.WriteString("Key points:\n")
		for i, point := range keyPoints {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, truncate(point, 80))
		}
	}

	if len(sections) > 0 {
		b.WriteString("Sections:\n")
		for i, sec := range sections {
			if i >= maxSections {
				break
			}
			fmt.Fprintf(&b, "  - %s\n", truncate(sec.digest(), 100))
		}
	}

	// Unstructured content: degrade to a compact prose digest so the
	// overview is never empty for non-empty input.
	if b.Len() == 0 {
		return truncate(collapseWhitespace(content), maxLen)
	}

	return truncate(b.String(), maxLen)
}

// dateFragment returns the first line carrying a date-like token, truncated
// to 50 bytes. When a second date token appears on a different line, that
// token is appended so ranges spanning lines survive the digest.
func dateFragment(content string) string {
	lines := splitLines(content)

	first := ""
	for _, line := range lines {
		if datePattern.MatchString(line) {
			first = line
			break
		}
	}
	if first == "" {
		return ""
	}

	fragment := truncate(first, 50)
	for _, line := range lines {
		if line == first || !datePattern.MatchString(line) {
			continue
		}
		fragment += " " + datePattern.FindString(line)
		break
	}
	return fragment
}

// extractKeyPoints returns up to max bullet or numbered list items,
// prefixed with their section title when inside one.
func extractKeyPoints(content string, max int) []string {
	var points []string
	section := ""

	for _, line := range splitLines(content) {
		if title, ok := headingTitle(line); ok {
			section = title
			continue
		}
		item, ok := listItem(line)
		if !ok {
			continue
		}
		if section != "" {
			item = section + ": " + item
		}
		points = append(points, item)
		if len(points) >= max {
			break
		}
	}

	return points
}

// section is one heading-delimited segment of the content.
type section struct {
	title string
	body  []string
}

// digest renders the section as "Title: first meaningful line".
func (s section) digest() string {
	for _, line := range s.body {
		if len(line) >= 10 {
			return s.title + ": " + line
		}
	}
	return s.title
}

// splitSections segments content by markdown heading markers ("#", "##", ...).
func splitSections(content string) []section {
	var sections []section
	var current *section

	for _, line := range splitLines(content) {
		if title, ok := headingTitle(line); ok {
			sections = append(sections, section{title: title})
			current = &sections[len(sections)-1]
			continue
		}
		if current == nil {
			continue
		}
		if _, isItem := listItem(line); isItem {
			continue
		}
		current.body = append(current.body, line)
	}

	return sections
}

// headingTitle returns the title of a markdown heading line.
func headingTitle(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	trimmed := strings.TrimLeft(line, "#")
	if !strings.HasPrefix(trimmed, " ") {
		return "", false
	}
	return strings.TrimSpace(trimmed), true
}

// listItem returns the content of a bullet ("- ", "* ", "• ") or numbered
// ("1. ") list line.
func listItem(line string) (string, bool) {
	for _, prefix := range []string{"- ", "* ", "• "} {
		if after, ok := strings.CutPrefix(line, prefix); ok {
			return strings.TrimSpace(after), true
		}
	}
	// "1. " style numbered lists.
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i+1 < len(line) && line[i] == '.' && line[i+1] == ' ' {
		return strings.TrimSpace(line[i+2:]), true
	}
	return "", false
}

// splitLines splits text by newlines, trimming whitespace and filtering blanks.
func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

// collapseWhitespace flattens runs of whitespace (including newlines) into
// single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate hard-truncates s to max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && s[cut]&0xC0 == 0x80 {
		cut--
	}
	return s[:cut]
}
