// Package csrf manages single-use, expiring form tokens bound to an
// authenticated principal.
package csrf

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

const (
	tokenTTL       = time.Hour
	tokenByteCount = 32
)

// Config carries the store dependencies.
type Config struct {
	Clock func() time.Time
}

// TokenStore issues and validates per-principal CSRF tokens. Tokens are
// consumed on successful validation and expire after one hour regardless of
// use. Safe for concurrent use.
type TokenStore struct {
	mu     sync.Mutex
	clock  func() time.Time
	tokens map[string]map[string]time.Time
}

// NewTokenStore constructs an empty store, defaulting to the system clock.
func NewTokenStore(cfg Config) *TokenStore {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenStore{
		clock:  clock,
		tokens: make(map[string]map[string]time.Time),
	}
}

// Issue generates an unpredictable token for the principal and records it.
// Expired tokens for the same principal are evicted opportunistically before
// the new one is inserted.
func (s *TokenStore) Issue(principalID string) (string, error) {
	if principalID == "" {
		return "", fmt.Errorf("csrf: principal id is required")
	}

	material := make([]byte, tokenByteCount)
	if _, err := rand.Read(material); err != nil {
		return "", fmt.Errorf("csrf: generate token: %w", err)
	}
	token := hex.EncodeToString(material)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	owned := s.tokens[principalID]
	if owned == nil {
		owned = make(map[string]time.Time)
		s.tokens[principalID] = owned
	}
	for existing, issuedAt := range owned {
		if now.Sub(issuedAt) >= tokenTTL {
			delete(owned, existing)
		}
	}
	owned[token] = now

	return token, nil
}

// Validate reports whether the token is current for the principal. A valid
// token is deleted before returning so it cannot be replayed; an expired
// token is evicted as a side effect.
func (s *TokenStore) Validate(principalID, token string) bool {
	if principalID == "" || token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owned, ok := s.tokens[principalID]
	if !ok {
		return false
	}
	issuedAt, ok := owned[token]
	if !ok {
		return false
	}
	if s.clock().Sub(issuedAt) > tokenTTL {
		delete(owned, token)
		return false
	}

	delete(owned, token)
	return true
}
