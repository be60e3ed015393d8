// Package cache memoizes parse results between runs. Entries are keyed by
// document content hash, so an edited file can never be served stale.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for the parse cache
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// DocumentKey derives a cache key from raw document content
func DocumentKey(content []byte) string {
	hash := sha256.Sum256(content)
	return "quire:doc:v1:" + hex.EncodeToString(hash[:])
}
