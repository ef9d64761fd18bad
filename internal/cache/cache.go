// Package cache provides the two cache tiers: an in-memory TTL cache for
// resolved lookups and a persistent disk cache for the item corpus snapshot.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is a persistent byte-level cache
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}

// Key builds a stable cache key from its parts. Parts are case-folded so
// "M4A1" and "m4a1" share an entry.
func Key(parts ...string) string {
	joined := strings.ToLower(strings.Join(parts, "\x00"))
	hash := sha256.Sum256([]byte(joined))
	return "pricelens:v1:" + hex.EncodeToString(hash[:])
}
