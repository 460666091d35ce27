// Package service provides invitation secret generation and hashing.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/activation/internal/errors"
)

// SecretService generates and hashes invitation secrets.
type SecretService interface {
	// GenerateSecret creates a new invitation secret. The plain secret goes into
	// the activation link; only the hash is stored.
	GenerateSecret() (plainSecret string, secretHash string, err error)

	// HashSecret hashes a plain secret for storage or comparison.
	HashSecret(plainSecret string) string

	// CompareSecret reports whether a plain secret matches a stored hash.
	CompareSecret(plainSecret string, secretHash string) bool
}

// secretService implements SecretService using SHA-256 hashing. Invitation
// secrets are high-entropy random values, so a fast hash is sufficient;
// password hashing uses argon2id elsewhere.
type secretService struct{}

// NewSecretService creates a new SecretService.
func NewSecretService() SecretService {
	return &secretService{}
}

// GenerateSecret creates a cryptographically secure 32-byte random secret,
// base64 URL-encoded for use in an activation link, plus its SHA-256 hash.
func (s *secretService) GenerateSecret() (plainSecret string, secretHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random secret")
	}

	plainSecret = base64.RawURLEncoding.EncodeToString(randomBytes)
	secretHash = s.HashSecret(plainSecret)

	return plainSecret, secretHash, nil
}

// HashSecret hashes a plain secret using SHA-256, hex-encoded.
func (s *secretService) HashSecret(plainSecret string) string {
	hash := sha256.Sum256([]byte(plainSecret))
	return hex.EncodeToString(hash[:])
}

// CompareSecret compares in constant time.
func (s *secretService) CompareSecret(plainSecret string, secretHash string) bool {
	computed := s.HashSecret(plainSecret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(secretHash)) == 1
}
