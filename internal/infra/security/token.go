package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	defaultTokenBytes = 32
	minTokenBytes     = 16
	// bcrypt ignores input past 72 bytes; 54 raw bytes encode to 72 characters.
	maxTokenBytes = 54
)

// RandomTokenGenerator issues URL-safe admin bearer tokens.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = defaultTokenBytes
	}
	if size < minTokenBytes || size > maxTokenBytes {
		return "", fmt.Errorf("token: size must be between %d and %d bytes, got %d", minTokenBytes, maxTokenBytes, size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
