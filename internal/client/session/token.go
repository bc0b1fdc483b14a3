package session

import "sync"

// TokenStore holds the current access token in memory only. The token is
// never written to durable storage; losing it on process exit is the
// intended behavior (the session is restored through a refresh instead).
//
// The store does no validation and no expiry tracking. Expiry is discovered
// reactively through 401 responses, not predicted.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set replaces the current token.
func (s *TokenStore) Set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Get returns the current token, or "" when none is held.
func (s *TokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Clear drops the current token.
func (s *TokenStore) Clear() {
	s.Set("")
}
