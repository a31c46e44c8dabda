package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const resetTokenBytes = 20

// GenerateResetToken returns 20 random bytes hex-encoded (40 characters).
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
