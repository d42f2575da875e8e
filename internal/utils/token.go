package utils

import (
	"crypto/rand"   // secure random number generation
	"encoding/hex"  // hex encoding for secrets and codes

	"golang.org/x/crypto/bcrypt"
)

// NewRefreshSecret returns a fresh refresh-token secret: 64 random bytes
// hex-encoded (128 characters). The hex form travels to the client; only a
// bcrypt hash of the underlying bytes is ever stored.
func NewRefreshSecret() (string, error) {
	return randomHex(64)
}

// HashRefreshSecret bcrypt-hashes a refresh secret at the given cost.
// Hashing works on the decoded bytes because bcrypt rejects inputs longer
// than 72 bytes and the hex form is 128 characters.
func HashRefreshSecret(raw string, cost int) (string, error) {
	b, err := hex.DecodeString(raw)
	if err != nil {
		// Not one of ours; hash the string form so the caller still gets a
		// stable value to store.
		b = []byte(raw)
	}
	h, err := bcrypt.GenerateFromPassword(b, cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyRefreshSecret compares a stored hash with a presented secret. Any
// failure, including malformed input, reads as a non-match.
func VerifyRefreshSecret(hash, raw string) bool {
	b, err := hex.DecodeString(raw)
	if err != nil {
		b = []byte(raw)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), b) == nil
}

// NewInvitationCode returns a short random invitation code (3 bytes, 6 hex
// characters), unique enough for single-use codes with a DB unique index
// backstop.
func NewInvitationCode() (string, error) {
	return randomHex(3)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
