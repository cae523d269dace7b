package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewResetToken returns a fresh password-reset token and the hash that gets
// persisted. Only the hash is ever stored; the raw token travels by email.
func NewResetToken() (raw string, hash string) {
	raw = uuid.NewString()
	return raw, HashResetToken(raw)
}

// HashResetToken hashes an incoming raw token for lookup against the stored
// value.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
