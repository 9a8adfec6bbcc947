package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key builds a cache key for an artifact of the given kind from its
// inputs. The key format is: kind:sha256(json(parts)).
func Key(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
