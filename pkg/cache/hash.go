package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex SHA-256 of data (64 characters).
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key builds a namespaced cache key for a registry response, e.g.
// Key("registry", url) -> "registry:<sha256(url)>".
func Key(namespace, id string) string {
	return namespace + ":" + Hash([]byte(id))
}
