// Package session holds the process-wide mapping from opaque session tokens
// to bucket identifiers. The mapping is purely in-memory: tokens survive
// exactly as long as the process and there is no eviction or refresh.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/wanderlist/internal/domain"
)

const tokenBytes = 32

// Store maps session tokens to bucket ids. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]uuid.UUID
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]uuid.UUID)}
}

// Create generates an unguessable token, binds it to bucketID and returns it.
func (s *Store) Create(bucketID uuid.UUID) (string, error) {
	token, err := generateToken(tokenBytes)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[token] = bucketID
	s.mu.Unlock()

	return token, nil
}

// Resolve returns the bucket id bound to token. Unknown or empty tokens
// fail with domain.ErrSessionNotFound.
func (s *Store) Resolve(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, domain.ErrSessionNotFound
	}

	s.mu.RLock()
	bucketID, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return uuid.Nil, domain.ErrSessionNotFound
	}
	return bucketID, nil
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// generateToken creates a cryptographically secure random token
func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
