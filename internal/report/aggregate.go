package report

import (
	"fmt"
	"strings"
	"time"

	"logmentor/internal/domain"
)

// Aggregate merges ordered per-chunk analyses into one consolidated
// report. It is pure: no external capability calls, same input always
// yields the same consolidation. FAILED chunks contribute a placeholder
// line but never abort the rest.
func Aggregate(analyses []domain.ChunkAnalysis) domain.Report {
	var summaries []string
	var errs, rootCauses, fixes []string
	seenErr := make(map[string]bool)
	seenCause := make(map[string]bool)
	seenFix := make(map[string]bool)

	for i, a := range analyses {
		if a.Status == domain.AnalysisFailed {
			reason := a.FailureReason
			if reason == "" {
				reason = "unknown failure"
			}
			summaries = append(summaries, fmt.Sprintf("[chunk %d] analysis failed: %s", i+1, reason))
			continue
		}

		if s := strings.TrimSpace(a.Summary); s != "" {
			summaries = append(summaries, s)
		}

		// Case-insensitive dedup, first-seen form wins.
		for _, e := range a.DetectedErrors {
			key := strings.ToLower(e)
			if !seenErr[key] {
				seenErr[key] = true
				errs = append(errs, e)
			}
		}

		if cause := strings.TrimSpace(a.RootCause); cause != "" && !seenCause[cause] {
			seenCause[cause] = true
			rootCauses = append(rootCauses, cause)
		}

		for _, f := range a.FixSuggestions {
			key := strings.ToLower(f)
			if !seenFix[key] {
				seenFix[key] = true
				fixes = append(fixes, f)
			}
		}
	}

	return domain.Report{
		PerChunk:            append([]domain.ChunkAnalysis(nil), analyses...),
		ConsolidatedSummary: strings.Join(summaries, "\n\n"),
		DetectedErrors:      errs,
		RootCauses:          rootCauses,
		FixSuggestions:      fixes,
		GeneratedAt:         time.Now(),
	}
}

// Format renders a report as plain text for display or export.
func Format(r domain.Report) string {
	var sb strings.Builder

	sb.WriteString("Log Analysis Report\n")
	sb.WriteString("Generated: " + r.GeneratedAt.Format(time.RFC3339) + "\n\n")

	sb.WriteString("## Summary\n\n")
	if r.ConsolidatedSummary == "" {
		sb.WriteString("No analyses available.\n")
	} else {
		sb.WriteString(r.ConsolidatedSummary + "\n")
	}

	if len(r.DetectedErrors) > 0 {
		sb.WriteString("\n## Detected Errors\n\n")
		for _, e := range r.DetectedErrors {
			sb.WriteString("- " + e + "\n")
		}
	}
	if len(r.RootCauses) > 0 {
		sb.WriteString("\n## Root Causes\n\n")
		for _, c := range r.RootCauses {
			sb.WriteString("- " + c + "\n")
		}
	}
	if len(r.FixSuggestions) > 0 {
		sb.WriteString("\n## Suggested Fixes\n\n")
		for _, f := range r.FixSuggestions {
			sb.WriteString("- " + f + "\n")
		}
	}

	failed := 0
	for _, a := range r.PerChunk {
		if a.Status == domain.AnalysisFailed {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(&sb, "\n%d of %d chunks failed analysis.\n", failed, len(r.PerChunk))
	}

	return sb.String()
}
