package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher hashes and verifies API client secrets.
type SecretHasher struct {
	Cost int
}

// NewSecretHasher reads BCRYPT_COST (default: 12, allowed 10-14).
func NewSecretHasher() (*SecretHasher, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}
	if cost < 10 || cost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}
	return &SecretHasher{Cost: cost}, nil
}

// Hash returns the bcrypt hash of secret, suitable for Config.Clients.
func (h *SecretHasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("client secret is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash client secret: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches storedHash.
func (h *SecretHasher) Verify(secret, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}

// VerifyClient checks a client's secret against the configured hashes.
func (c *Config) VerifyClient(h *SecretHasher, clientID, secret string) bool {
	hash, ok := c.Clients[clientID]
	if !ok {
		return false
	}
	return h.Verify(secret, hash)
}
