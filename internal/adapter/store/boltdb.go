package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"logmentor/internal/domain"
)

var bucketAnalyses = []byte("analyses")

// BoltCache persists completed chunk analyses so re-running analysis over
// the same log corpus skips paid model calls. It implements
// port.AnalysisCache.
type BoltCache struct {
	db *bbolt.DB
}

// OpenBoltCache opens (or creates) the cache database at path.
func OpenBoltCache(path string) (*BoltCache, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open analysis cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketAnalyses)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create analyses bucket: %w", err)
	}

	return &BoltCache{db: db}, nil
}

func (c *BoltCache) Get(fingerprint string) (domain.ChunkAnalysis, bool) {
	var analysis domain.ChunkAnalysis
	found := false

	c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAnalyses)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(fingerprint))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &analysis); err != nil {
			return nil // skip corrupted entries
		}
		found = true
		return nil
	})

	return analysis, found
}

func (c *BoltCache) Put(analysis domain.ChunkAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAnalyses)
		if b == nil {
			return fmt.Errorf("analyses bucket not found")
		}
		return b.Put([]byte(analysis.ChunkID), data)
	})
}

// Count returns the number of persisted analyses.
func (c *BoltCache) Count() (int, error) {
	count := 0
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAnalyses)
		if b == nil {
			return nil
		}
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
