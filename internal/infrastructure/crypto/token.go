package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenGenerator provides cryptographically secure token generation.
type TokenGenerator struct{}

// NewTokenGenerator creates a new token generator.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// GenerateToken generates a cryptographically secure random token.
// Returns the token as a URL-safe base64 string.
func (g *TokenGenerator) GenerateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateStateToken generates the CSRF state nonce for an authorization
// attempt (256 bits).
func (g *TokenGenerator) GenerateStateToken() (string, error) {
	return g.GenerateToken(32)
}
