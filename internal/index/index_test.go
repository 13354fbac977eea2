package index

import (
	"context"
	"errors"
	"testing"

	"logmentor/internal/domain"
)

// stubEmbedder returns fixed vectors keyed by text, falling back to a
// zero vector for unknown input.
type stubEmbedder struct {
	dim     int
	vectors map[string][]float32
	err     error
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, e.dim)
		}
	}
	return out, nil
}

func (e *stubEmbedder) Dimension() int    { return e.dim }
func (e *stubEmbedder) ModelName() string { return "stub" }

func chunkWith(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, Text: text}
}

func TestQueryBeforeBuild(t *testing.T) {
	ix := New(&stubEmbedder{dim: 3, vectors: map[string][]float32{}})

	_, err := ix.Query(context.Background(), "anything", 3)
	if !errors.Is(err, ErrIndexEmpty) {
		t.Fatalf("expected ErrIndexEmpty, got %v", err)
	}
}

func TestQueryReturnsNearest(t *testing.T) {
	emb := &stubEmbedder{dim: 3, vectors: map[string][]float32{
		"chunk one":   {1, 0, 0},
		"chunk two":   {0, 1, 0},
		"chunk three": {0, 0, 1},
		"query":       {1, 0.1, 0},
	}}
	ix := New(emb)

	chunks := []domain.Chunk{
		chunkWith("c1", "chunk one"),
		chunkWith("c2", "chunk two"),
		chunkWith("c3", "chunk three"),
	}
	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(context.Background(), "query", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Record.SourceID != "c1" {
		t.Errorf("expected c1 first, got %s", results[0].Record.SourceID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not sorted by score: %f <= %f", results[0].Score, results[1].Score)
	}
}

func TestQueryIdenticalVectorReturnsSelf(t *testing.T) {
	emb := &stubEmbedder{dim: 2, vectors: map[string][]float32{
		"first":  {0.5, 0.5},
		"second": {1, 0},
	}}
	ix := New(emb)

	err := ix.Build(context.Background(), []domain.Chunk{
		chunkWith("c1", "first"),
		chunkWith("c2", "second"),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(context.Background(), "first", 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Record.SourceID != "c1" {
		t.Errorf("expected exact match c1 first, got %s", results[0].Record.SourceID)
	}
}

func TestQueryTieBrokenByChunkOrder(t *testing.T) {
	// Both chunks embed to the same vector; the earlier chunk must win.
	emb := &stubEmbedder{dim: 2, vectors: map[string][]float32{
		"dup a": {1, 1},
		"dup b": {1, 1},
		"query": {1, 1},
	}}
	ix := New(emb)

	err := ix.Build(context.Background(), []domain.Chunk{
		chunkWith("early", "dup a"),
		chunkWith("late", "dup b"),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(context.Background(), "query", 2)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Record.SourceID != "early" {
		t.Errorf("tie not broken by chunk order: got %s first", results[0].Record.SourceID)
	}
}

func TestRebuildReplacesIndex(t *testing.T) {
	emb := &stubEmbedder{dim: 2, vectors: map[string][]float32{
		"old": {1, 0},
		"new": {0, 1},
	}}
	ix := New(emb)

	if err := ix.Build(context.Background(), []domain.Chunk{chunkWith("old-id", "old")}); err != nil {
		t.Fatal(err)
	}
	if err := ix.Build(context.Background(), []domain.Chunk{chunkWith("new-id", "new")}); err != nil {
		t.Fatal(err)
	}

	results, err := ix.Query(context.Background(), "new", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Record.SourceID != "new-id" {
		t.Errorf("rebuild did not replace prior index: %+v", results)
	}
}

func TestBuildFailureKeepsPriorSnapshot(t *testing.T) {
	emb := &stubEmbedder{dim: 2, vectors: map[string][]float32{"keep": {1, 0}}}
	ix := New(emb)

	if err := ix.Build(context.Background(), []domain.Chunk{chunkWith("c1", "keep")}); err != nil {
		t.Fatal(err)
	}

	emb.err = errors.New("embedding service down")
	if err := ix.Build(context.Background(), []domain.Chunk{chunkWith("c2", "other")}); err == nil {
		t.Fatal("expected build error")
	}

	emb.err = nil
	results, err := ix.Query(context.Background(), "keep", 1)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Record.SourceID != "c1" {
		t.Errorf("prior snapshot lost after failed rebuild")
	}
}

func TestSize(t *testing.T) {
	emb := &stubEmbedder{dim: 2, vectors: map[string][]float32{}}
	ix := New(emb)

	if ix.Size() != 0 {
		t.Errorf("expected size 0 before build, got %d", ix.Size())
	}
	if err := ix.Build(context.Background(), []domain.Chunk{chunkWith("a", "x"), chunkWith("b", "y")}); err != nil {
		t.Fatal(err)
	}
	if ix.Size() != 2 {
		t.Errorf("expected size 2, got %d", ix.Size())
	}
}
