package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the raw entropy per session token, 256 bits.
const tokenBytes = 32

// Generator produces opaque, unguessable session tokens.
type Generator struct{}

// NewGenerator creates a new token Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a URL-safe random token.
func (g *Generator) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
