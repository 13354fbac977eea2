package cache

import (
	"sync"

	"logmentor/internal/domain"
)

// MemoryCache is a session-scoped analysis cache keyed by chunk
// fingerprint. It implements port.AnalysisCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.ChunkAnalysis
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]domain.ChunkAnalysis)}
}

func (c *MemoryCache) Get(fingerprint string) (domain.ChunkAnalysis, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	analysis, ok := c.entries[fingerprint]
	return analysis, ok
}

func (c *MemoryCache) Put(analysis domain.ChunkAnalysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[analysis.ChunkID] = analysis
	return nil
}

// Len returns the number of cached analyses.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
