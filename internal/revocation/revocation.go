// Package revocation keeps the access tokens revoked by sign-out until they expire.
//
// The identity provider keeps accepting a signed-out access token until its
// expiry, so the guard consults this list before asking the provider.
// Only a blake2b fingerprint of a token is stored.
package revocation

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "revoked:"

// Store is a revocation list on top of a fiber storage.
type Store struct {
	storage    fiber.Storage
	defaultTTL time.Duration
	now        func() time.Time
}

// New creates a Store. defaultTTL is used for tokens without a readable expiry.
func New(storage fiber.Storage, defaultTTL time.Duration) *Store {
	return &Store{
		storage:    storage,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Key returns the storage key of token.
func Key(token string) string {
	sum := blake2b.Sum256([]byte(token))

	return keyPrefix + hex.EncodeToString(sum[:])
}

// Revoke records token until it expires. Already expired tokens are not stored.
func (s *Store) Revoke(token string) error {
	ttl := s.ttl(token)
	if ttl <= 0 {
		return nil
	}

	val := []byte(s.now().UTC().Format(time.RFC3339))

	if err := s.storage.Set(Key(token), val, ttl); err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}

	return nil
}

// IsRevoked reports whether token was revoked.
func (s *Store) IsRevoked(token string) (bool, error) {
	val, err := s.storage.Get(Key(token))
	if err != nil {
		return false, fmt.Errorf("read revocation: %w", err)
	}

	return len(val) > 0, nil
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close() //nolint:wrapcheck
}

// ttl is the remaining lifetime of token taken from its unverified exp claim.
// The signature was already checked by the provider when the token was used.
func (s *Store) ttl(token string) time.Duration {
	t, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return s.defaultTTL
	}

	exp, err := t.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return s.defaultTTL
	}

	return exp.Sub(s.now())
}
