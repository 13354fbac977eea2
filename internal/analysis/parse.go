package analysis

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedResponse is returned when an analyst response contains no
// recognizable sections. This is a parse failure, distinct from a
// transport failure, and is never retried.
var ErrMalformedResponse = errors.New("no recognizable sections in analyst response")

// parsedAnalysis is the structured form of one analyst response.
type parsedAnalysis struct {
	Summary   string
	Errors    []string
	RootCause string
	Fixes     []string
}

// sectionRe matches section headers the analyst prompt asks for, with or
// without numbering, markdown emphasis and a trailing colon.
var sectionRe = regexp.MustCompile(`(?i)^\s*(#+\s*|\*\*\s*|\d+[.)]\s*)*(summary|detected errors|errors|root causes?|suggested fix(?:es)?|fix suggestions?|fixes?)\b(?:\s*\*\*)?\s*(:)?\s*(.*)$`)

var bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// parseAnalystResponse extracts the Summary / Errors / Root cause /
// Suggested fix sections from semi-structured model output. Missing
// optional sections yield empty values; a response with no sections at
// all fails with ErrMalformedResponse.
func parseAnalystResponse(raw string) (parsedAnalysis, error) {
	sections := make(map[string][]string)
	current := ""
	found := false

	for _, line := range strings.Split(raw, "\n") {
		if key, rest, ok := matchSection(line); ok {
			current = key
			found = true
			if rest != "" {
				sections[key] = append(sections[key], rest)
			}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}

	if !found {
		return parsedAnalysis{}, ErrMalformedResponse
	}

	return parsedAnalysis{
		Summary:   joinProse(sections["summary"]),
		Errors:    listItems(sections["errors"]),
		RootCause: joinProse(sections["rootcause"]),
		Fixes:     listItems(sections["fixes"]),
	}, nil
}

// matchSection reports whether line is a section header, returning the
// canonical section key and any content after the header. A bare keyword
// in running prose does not count; it needs a colon, a numbering or
// markdown prefix, or a line of its own.
func matchSection(line string) (key, rest string, ok bool) {
	m := sectionRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	prefix, name, colon, tail := m[1], m[2], m[3], strings.TrimSpace(m[4])
	if colon == "" && prefix == "" && tail != "" {
		return "", "", false
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "summary":
		key = "summary"
	case "errors", "detected errors":
		key = "errors"
	case "root cause", "root causes":
		key = "rootcause"
	default:
		key = "fixes"
	}
	// "**Errors:** none" leaves the closing emphasis on the tail.
	return key, strings.TrimSpace(strings.TrimLeft(tail, "*")), true
}

// joinProse joins section lines into one trimmed paragraph, dropping
// filler values like "none" or "n/a".
func joinProse(lines []string) string {
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if isFiller(text) {
		return ""
	}
	return text
}

// listItems splits section lines into individual items, one per bullet
// or non-empty line.
func listItems(lines []string) []string {
	var items []string
	for _, line := range lines {
		item := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if item == "" || isFiller(item) {
			continue
		}
		items = append(items, item)
	}
	return items
}

func isFiller(text string) bool {
	switch strings.ToLower(strings.TrimRight(text, ".")) {
	case "", "none", "n/a", "na", "unknown", "no errors detected", "no errors found", "no errors":
		return true
	}
	return false
}
