package quoterclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/quoter-client/internal/client"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// New creates a new Quoter API client.
func New(config *quoter.Config) (quoter.Client, error) {
	if config == nil {
		return nil, quoter.ErrConfigRequired
	}

	normalized := *config
	normalized.BaseURL = NormalizeBaseURL(config.BaseURL)

	// Use the internal client implementation
	cli, err := client.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithClientCredentials creates a client for the default endpoint.
func NewWithClientCredentials(clientID, clientSecret string) (quoter.Client, error) {
	return New(&quoter.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}

// NewVerified creates a client and performs a client credentials
// authorization, so bad credentials fail here instead of on first use.
func NewVerified(ctx context.Context, config *quoter.Config) (quoter.Client, error) {
	cli, err := New(config)
	if err != nil {
		return nil, err
	}

	err = cli.TestCredentials(ctx)
	if err != nil {
		return nil, err
	}

	return cli, nil
}

// NormalizeBaseURL trims trailing slashes and assumes https when no scheme
// is given. An empty URL yields quoter.DefaultBaseURL.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return quoter.DefaultBaseURL
	}

	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}
