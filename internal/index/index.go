package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"logmentor/internal/domain"
	"logmentor/internal/port"
)

// ErrIndexEmpty is returned by Query before any successful Build.
var ErrIndexEmpty = errors.New("embedding index is empty")

// Index maps chunks to vector representations and answers nearest-neighbor
// queries by cosine similarity. Build swaps in a complete snapshot
// atomically; queries never observe a half-built index.
type Index struct {
	embedder port.Embedder

	mu   sync.RWMutex
	snap *snapshot
}

type snapshot struct {
	records   []domain.EmbeddingRecord // in original chunk order
	dimension int
}

func New(embedder port.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build embeds every chunk and replaces the prior index. Rebuilding is
// idempotent; on error the previous snapshot stays in place.
func (ix *Index) Build(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dim := ix.embedder.Dimension()
	records := make([]domain.EmbeddingRecord, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", dim, len(vectors[i]))
		}
		records[i] = domain.EmbeddingRecord{
			SourceID:   c.ID,
			Vector:     vectors[i],
			SourceText: c.Text,
		}
	}

	ix.mu.Lock()
	ix.snap = &snapshot{records: records, dimension: dim}
	ix.mu.Unlock()

	return nil
}

// Query embeds the text with the same embedder used at build time and
// returns the k nearest records. Ties are broken by original chunk order,
// earlier chunk first.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]domain.ScoredRecord, error) {
	ix.mu.RLock()
	snap := ix.snap
	ix.mu.RUnlock()

	if snap == nil || len(snap.records) == 0 {
		return nil, ErrIndexEmpty
	}

	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) != snap.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d", snap.dimension)
	}
	query := vectors[0]

	scored := make([]domain.ScoredRecord, len(snap.records))
	for i, r := range snap.records {
		scored[i] = domain.ScoredRecord{
			Record: r,
			Score:  cosineSimilarity(query, r.Vector),
		}
	}

	// Stable sort preserves chunk order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	if k < 0 {
		k = 0
	}
	return scored[:k], nil
}

// Size returns the number of indexed records.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.snap == nil {
		return 0
	}
	return len(ix.snap.records)
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
