package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"logmentor/internal/domain"
)

// Builder groups structured entries into bounded analysis units. Size is
// measured in characters of the rendered entry text. Entries are atomic:
// a single entry larger than the budget becomes its own oversized chunk,
// never split and never dropped.
type Builder struct {
	budget  int
	overlap int // trailing entries repeated at the start of the next chunk
}

func NewBuilder(budget, overlap int) *Builder {
	if overlap < 0 {
		overlap = 0
	}
	return &Builder{budget: budget, overlap: overlap}
}

// Build partitions entries into chunks greedily in original order. With a
// zero overlap the chunks partition the input exactly. Empty input yields
// an empty sequence.
func (b *Builder) Build(entries []domain.LogEntry) []domain.Chunk {
	var chunks []domain.Chunk

	start := 0
	for start < len(entries) {
		end := start
		size := 0

		for end < len(entries) {
			sz := len(entries[end].Render())
			if end > start && size+sz > b.budget {
				break
			}
			size += sz
			end++
		}

		chunks = append(chunks, b.makeChunk(entries[start:end], size))

		if b.overlap > 0 && end < len(entries) {
			newStart := end - b.overlap
			if newStart <= start {
				newStart = start + 1
			}
			start = newStart
			continue
		}
		start = end
	}

	return chunks
}

func (b *Builder) makeChunk(entries []domain.LogEntry, size int) domain.Chunk {
	rendered := make([]string, len(entries))
	for i, e := range entries {
		rendered[i] = e.Render()
	}
	text := strings.Join(rendered, "\n")

	return domain.Chunk{
		ID:         Fingerprint(text),
		Entries:    append([]domain.LogEntry(nil), entries...),
		ApproxSize: size,
		Text:       text,
	}
}

// Fingerprint derives the content identity used for chunk IDs and
// analysis caching.
func Fingerprint(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:8])
}
