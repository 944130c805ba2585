package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashInputs returns a SHA-256 hex digest of the JSON encoding of parts.
// Equal inputs always give equal digests, so it identifies the exact inputs
// a cached result was computed from.
func HashInputs(parts ...any) (string, error) {
	data, err := json.Marshal(parts)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
