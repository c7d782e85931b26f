package commands

import (
	"sync"
	"time"

	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// ConfigPersister implements the auth.ConfigPersister interface on top of the
// CLI configuration file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// LoadToken returns the token fields of a profile, or nil when none are set.
func (p *ConfigPersister) LoadToken(profileName string) (*quoter.Token, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	profile := loadConfig().Profiles[profileName]
	if profile == nil || (profile.AccessToken == "" && profile.RefreshToken == "") {
		return nil, nil
	}

	token := &quoter.Token{
		AccessToken:  profile.AccessToken,
		RefreshToken: profile.RefreshToken,
	}

	if profile.TokenExpiresAt != 0 {
		token.ExpiresAt = time.UnixMilli(profile.TokenExpiresAt)
	}

	return token, nil
}

// SaveToken replaces the token fields of a profile.
func (p *ConfigPersister) SaveToken(profileName string, token *quoter.Token) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()
	profile := ensureProfile(config, profileName)

	profile.AccessToken = token.AccessToken
	profile.RefreshToken = token.RefreshToken
	profile.TokenExpiresAt = 0

	if !token.ExpiresAt.IsZero() {
		profile.TokenExpiresAt = token.ExpiresAt.UnixMilli()
	}

	return saveConfigStruct(config)
}

// ClearToken removes the token fields of a profile.
func (p *ConfigPersister) ClearToken(profileName string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	profile := config.Profiles[profileName]
	if profile == nil {
		return nil
	}

	profile.AccessToken = ""
	profile.RefreshToken = ""
	profile.TokenExpiresAt = 0

	return saveConfigStruct(config)
}
