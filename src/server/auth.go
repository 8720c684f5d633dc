package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionTTL bounds how long an admin session stays valid without a new login.
const sessionTTL = 12 * time.Hour

// sessionStore tracks issued admin session tokens in memory. There is a single
// shared admin credential, so sessions carry no identity beyond the token.
type sessionStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newSessionStore() *sessionStore {
	return &sessionStore{tokens: make(map[string]time.Time)}
}

// Issue mints a fresh session token.
func (s *sessionStore) Issue() string {
	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = time.Now().Add(sessionTTL)
	s.mu.Unlock()

	return token
}

// Valid reports whether token names a live session, dropping it if expired.
func (s *sessionStore) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(s.tokens, token)
		return false
	}

	return true
}

// Revoke ends the session for token.
func (s *sessionStore) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
