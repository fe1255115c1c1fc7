package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a cache key from a prefix and the canonical JSON form of
// its parts: "prefix:" followed by the full hex SHA-256 digest. The full
// digest keeps distinct contexts from colliding.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the 64-character hex SHA-256 digest of data. Analysis inputs
// are content-addressed with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
