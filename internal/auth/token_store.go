package auth

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// MemoryTokenStore keeps token state in process memory.
type MemoryTokenStore struct {
	mutex sync.RWMutex
	token *quoter.Token
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Get returns a copy of the cached token, or nil.
func (s *MemoryTokenStore) Get(_ context.Context) (*quoter.Token, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if s.token == nil {
		return nil, nil
	}

	token := *s.token

	return &token, nil
}

// Set replaces the cached token.
func (s *MemoryTokenStore) Set(_ context.Context, token *quoter.Token) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if token == nil {
		s.token = nil

		return nil
	}

	stored := *token
	s.token = &stored

	return nil
}

// Clear removes the cached token.
func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil

	return nil
}
