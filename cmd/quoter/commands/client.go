package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/quoter-client/internal/auth"
	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/internal/logger"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/fivetwenty-io/quoter-client/pkg/quoterclient"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// loadProfile returns the selected profile with environment and flag
// overrides applied.
func loadProfile() (string, *ProfileConfig) {
	config := loadConfig()
	name := currentProfileName(config)

	profile := &ProfileConfig{}
	if stored := config.Profiles[name]; stored != nil {
		copied := *stored
		profile = &copied
	}

	if value := viper.GetString("base_url"); value != "" {
		profile.BaseURL = value
	}

	if value := viper.GetString("client_id"); value != "" {
		profile.ClientID = value
	}

	if value := viper.GetString("client_secret"); value != "" {
		profile.ClientSecret = value
	}

	if value := viper.GetString("token_store"); value != "" {
		profile.TokenStore = value
	}

	return name, profile
}

// newCLILogger returns a console logger at debug level with --verbose and a
// no-op logger otherwise.
func newCLILogger(out io.Writer) quoter.Logger {
	if !viper.GetBool("verbose") {
		return logger.Nop{}
	}

	return logger.NewAdapter(logger.NewDevelopment(out, viper.GetBool("no-color")).Level(zerolog.DebugLevel))
}

// newTokenStore opens the token store configured for a profile. The returned
// close function releases connections held by the store.
func newTokenStore(ctx context.Context, profileName string, profile *ProfileConfig) (quoter.TokenStore, func() error, error) {
	noop := func() error { return nil }

	switch profile.TokenStore {
	case "", TokenStoreConfig:
		return auth.NewConfigTokenStore(NewConfigPersister(), profileName), noop, nil
	case TokenStoreMemory:
		return quoterclient.NewMemoryTokenStore(), noop, nil
	case TokenStoreSQLite:
		path := profile.SQLitePath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %w", constants.ErrSQLitePathRequired, err)
			}

			path = filepath.Join(home, constants.ConfigDirName, "tokens.db")
		}

		store, err := quoterclient.NewSQLiteTokenStore(ctx, path, profileName)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	case TokenStoreNATS:
		store, err := quoterclient.NewNATSTokenStore(&quoterclient.NATSConfig{
			URL:    profile.NATSURL,
			Bucket: profile.NATSBucket,
			Key:    profileName,
		})
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", constants.ErrUnknownTokenStore, profile.TokenStore)
}

// newClientConfig builds the library configuration of a profile.
func newClientConfig(profile *ProfileConfig, store quoter.TokenStore, log quoter.Logger) *quoter.Config {
	return &quoter.Config{
		BaseURL:         profile.BaseURL,
		ClientID:        profile.ClientID,
		ClientSecret:    profile.ClientSecret,
		TokenStore:      store,
		RateLimit:       profile.RateLimit,
		IdempotencyKeys: profile.IdempotencyKeys,
		MaxPages:        profile.MaxPages,
		Logger:          log,
		Debug:           viper.GetBool("verbose"),
	}
}

// createClient builds a client for the selected profile. The caller must
// invoke the returned close function when done.
func createClient(ctx context.Context) (quoter.Client, func() error, error) {
	profileName, profile := loadProfile()

	if profile.ClientID == "" || profile.ClientSecret == "" {
		return nil, nil, constants.ErrNotLoggedIn
	}

	store, closeStore, err := newTokenStore(ctx, profileName, profile)
	if err != nil {
		return nil, nil, err
	}

	client, err := quoterclient.New(newClientConfig(profile, store, newCLILogger(os.Stderr)))
	if err != nil {
		_ = closeStore()

		return nil, nil, err
	}

	return client, closeStore, nil
}
