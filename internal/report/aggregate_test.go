package report

import (
	"strings"
	"testing"

	"logmentor/internal/domain"
)

func okAnalysis(id, summary string) domain.ChunkAnalysis {
	return domain.ChunkAnalysis{ChunkID: id, Status: domain.AnalysisOK, Summary: summary, Attempts: 1}
}

func TestAggregateSummariesInChunkOrder(t *testing.T) {
	r := Aggregate([]domain.ChunkAnalysis{
		okAnalysis("c1", "first summary"),
		okAnalysis("c2", "second summary"),
		okAnalysis("c3", "third summary"),
	})

	first := strings.Index(r.ConsolidatedSummary, "first")
	second := strings.Index(r.ConsolidatedSummary, "second")
	third := strings.Index(r.ConsolidatedSummary, "third")
	if first < 0 || second < 0 || third < 0 || first > second || second > third {
		t.Errorf("summaries out of order: %q", r.ConsolidatedSummary)
	}
	if len(r.PerChunk) != 3 {
		t.Errorf("per-chunk list truncated: %d", len(r.PerChunk))
	}
}

func TestAggregateDeduplicatesErrorsCaseInsensitively(t *testing.T) {
	a := okAnalysis("c1", "s1")
	a.DetectedErrors = []string{"NullPointerException", "disk full"}
	b := okAnalysis("c2", "s2")
	b.DetectedErrors = []string{"nullpointerexception", "Disk Full", "timeout"}

	r := Aggregate([]domain.ChunkAnalysis{a, b})

	if len(r.DetectedErrors) != 3 {
		t.Fatalf("expected 3 distinct errors, got %v", r.DetectedErrors)
	}
	if r.DetectedErrors[0] != "NullPointerException" {
		t.Errorf("first-seen form not preserved: %v", r.DetectedErrors)
	}
	seen := make(map[string]bool)
	for _, e := range r.DetectedErrors {
		key := strings.ToLower(e)
		if seen[key] {
			t.Errorf("case-insensitive duplicate survived: %s", e)
		}
		seen[key] = true
	}
}

func TestAggregateRootCausesFirstSeenOrder(t *testing.T) {
	a := okAnalysis("c1", "s1")
	a.RootCause = "rotation job broken"
	b := okAnalysis("c2", "s2")
	b.RootCause = ""
	c := okAnalysis("c3", "s3")
	c.RootCause = "pool exhaustion"
	d := okAnalysis("c4", "s4")
	d.RootCause = "rotation job broken"

	r := Aggregate([]domain.ChunkAnalysis{a, b, c, d})

	want := []string{"rotation job broken", "pool exhaustion"}
	if len(r.RootCauses) != len(want) {
		t.Fatalf("expected %v, got %v", want, r.RootCauses)
	}
	for i := range want {
		if r.RootCauses[i] != want[i] {
			t.Errorf("root cause %d: expected %q, got %q", i, want[i], r.RootCauses[i])
		}
	}
}

func TestAggregateFailedChunksPlaceholder(t *testing.T) {
	ok := okAnalysis("c1", "fine")
	failed := domain.ChunkAnalysis{
		ChunkID:       "c2",
		Status:        domain.AnalysisFailed,
		Attempts:      3,
		FailureReason: "transient: timeout",
	}

	r := Aggregate([]domain.ChunkAnalysis{ok, failed})

	if !strings.Contains(r.ConsolidatedSummary, "analysis failed") {
		t.Errorf("failed chunk placeholder missing: %q", r.ConsolidatedSummary)
	}
	if !strings.Contains(r.ConsolidatedSummary, "fine") {
		t.Error("failure aborted aggregation of healthy chunks")
	}
	if len(r.PerChunk) != 2 {
		t.Errorf("failed chunk dropped from per-chunk list")
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	r := Aggregate(nil)
	if r.ConsolidatedSummary != "" || len(r.DetectedErrors) != 0 {
		t.Errorf("unexpected content for empty input: %+v", r)
	}
}

func TestFormatIncludesSections(t *testing.T) {
	a := okAnalysis("c1", "summary text")
	a.DetectedErrors = []string{"disk full"}
	a.RootCause = "rotation broken"
	a.FixSuggestions = []string{"free space"}
	failed := domain.ChunkAnalysis{ChunkID: "c2", Status: domain.AnalysisFailed, FailureReason: "timeout"}

	out := Format(Aggregate([]domain.ChunkAnalysis{a, failed}))

	for _, want := range []string{"Detected Errors", "disk full", "Root Causes", "Suggested Fixes", "1 of 2 chunks failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatted report missing %q", want)
		}
	}
}
