package store

import (
	"path/filepath"
	"testing"

	"logmentor/internal/domain"
)

func openTestCache(t *testing.T) *BoltCache {
	t.Helper()
	c, err := OpenBoltCache(filepath.Join(t.TempDir(), "analyses.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestBoltCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)

	analysis := domain.ChunkAnalysis{
		ChunkID:        "abc123",
		Status:         domain.AnalysisOK,
		Summary:        "disk pressure during batch window",
		DetectedErrors: []string{"disk full"},
		RootCause:      "log rotation stopped",
		FixSuggestions: []string{"free disk space"},
		Attempts:       2,
	}
	if err := c.Put(analysis); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("abc123")
	if !ok {
		t.Fatal("stored analysis not found")
	}
	if got.Summary != analysis.Summary || got.Attempts != 2 {
		t.Errorf("round trip mutated analysis: %+v", got)
	}
	if len(got.DetectedErrors) != 1 || got.DetectedErrors[0] != "disk full" {
		t.Errorf("detected errors lost: %v", got.DetectedErrors)
	}
}

func TestBoltCacheMiss(t *testing.T) {
	c := openTestCache(t)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown fingerprint")
	}
}

func TestBoltCacheCount(t *testing.T) {
	c := openTestCache(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := c.Put(domain.ChunkAnalysis{ChunkID: id, Status: domain.AnalysisOK}); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 cached analyses, got %d", n)
	}
}
