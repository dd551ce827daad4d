package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken maps a raw bearer value to the lookup key stored in the access
// token table. The raw value itself is never persisted.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
