package utils

import (
	"crypto/rand"  // Cryptographically secure randomness
	"encoding/hex" // Hex encoding
)

// GenerateConfirmationToken returns a 64-character random hex string
// used as a single-use email confirmation token.
func GenerateConfirmationToken() (string, error) {
	b := make([]byte, 32) // 32 random bytes -> 64 hex characters
	if _, err := rand.Read(b); err != nil {
		return "", err // Return error if randomness fails
	}
	return hex.EncodeToString(b), nil // Encode as hex
}
