package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister reads and writes the token fields of a profile in the
// host's configuration file.
type ConfigPersister interface {
	LoadToken(profile string) (*quoter.Token, error)
	SaveToken(profile string, token *quoter.Token) error
	ClearToken(profile string) error
}

// ConfigTokenStore is a TokenStore backed by a ConfigPersister. The token is
// read once and kept in memory; every change is written through.
type ConfigTokenStore struct {
	persister ConfigPersister
	profile   string
	mutex     sync.Mutex
	loaded    bool
	token     *quoter.Token
}

// NewConfigTokenStore creates a store for one profile of the configuration.
func NewConfigTokenStore(persister ConfigPersister, profile string) *ConfigTokenStore {
	return &ConfigTokenStore{
		persister: persister,
		profile:   profile,
	}
}

// Get returns the profile's token, loading it on first use.
func (s *ConfigTokenStore) Get(_ context.Context) (*quoter.Token, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.persister == nil {
		return nil, ErrNoConfigPersister
	}

	if !s.loaded {
		token, err := s.persister.LoadToken(s.profile)
		if err != nil {
			return nil, fmt.Errorf("loading token for profile '%s': %w", s.profile, err)
		}

		s.token = token
		s.loaded = true
	}

	if s.token == nil {
		return nil, nil
	}

	token := *s.token

	return &token, nil
}

// Set writes the token to the configuration.
func (s *ConfigTokenStore) Set(_ context.Context, token *quoter.Token) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.persister == nil {
		return ErrNoConfigPersister
	}

	if token == nil {
		return s.clearLocked()
	}

	err := s.persister.SaveToken(s.profile, token)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	stored := *token
	s.token = &stored
	s.loaded = true

	return nil
}

// Clear removes the token fields from the configuration.
func (s *ConfigTokenStore) Clear(_ context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.persister == nil {
		return ErrNoConfigPersister
	}

	return s.clearLocked()
}

func (s *ConfigTokenStore) clearLocked() error {
	err := s.persister.ClearToken(s.profile)
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	s.token = nil
	s.loaded = true

	return nil
}
