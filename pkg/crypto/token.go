package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLength = 12

// HashToken returns the hex SHA-256 of a value
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Fingerprint is a short, stable, non-reversible label for an identifier.
// Used wherever an id must be correlatable in logs without being stored raw.
func Fingerprint(value string) string {
	return HashToken(value)[:fingerprintLength]
}
