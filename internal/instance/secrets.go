package instance

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/moguard/subctl/internal/errors"
)

// randomHex returns n random bytes hex-encoded, so the result is 2n
// characters and safe to place unquoted in env files and DSNs.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}
	return hex.EncodeToString(buf), nil
}

// NewPassword generates a database password for a new instance.
// 32 hex characters, generated once at creation and persisted only in the
// instance's env file.
func NewPassword() (string, error) {
	return randomHex(16)
}

// NewJWTSecret generates the signing secret the managed panel uses for its
// auth tokens.
func NewJWTSecret() (string, error) {
	return randomHex(32)
}
