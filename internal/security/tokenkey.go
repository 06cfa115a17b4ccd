package security

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenKeyLength is the length in characters of an auth token key.
const TokenKeyLength = 40

// NewTokenKey returns a random 40-character hex key for an auth token.
func NewTokenKey() (string, error) {
	b := make([]byte, TokenKeyLength/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
