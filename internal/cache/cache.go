// Package cache memoizes batch results. Parsing is deterministic, so a
// document's rendered report is fully determined by its byte content and
// the rule set version; batch runs over large scan archives can skip
// documents they have already processed. The core pipeline never caches;
// this sits at the batch layer, outside it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from document content and the rule set version.
// Results produced under different rules must never serve each other.
func Key(content []byte, rulesVersion string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(rulesVersion))
	return "resolutor:v1:" + hex.EncodeToString(h.Sum(nil))
}
