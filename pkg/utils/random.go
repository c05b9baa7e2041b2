package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecret returns a random 32 byte secret usable both as an HMAC
// secret and as an AES-256 key.
func GenerateSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// 24 bytes encode to exactly 32 base64 characters.
	return base64.RawURLEncoding.EncodeToString(b), nil
}
