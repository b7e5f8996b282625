package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key builds a namespaced cache key: "namespace:name".
func Key(namespace, name string) string {
	return fmt.Sprintf("%s:%s", namespace, name)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
