package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/quoter-client/internal/auth"
	"github.com/fivetwenty-io/quoter-client/internal/constants"
	quoterhttp "github.com/fivetwenty-io/quoter-client/internal/http"
	"github.com/fivetwenty-io/quoter-client/internal/logger"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// TokenManager is the token source of the client. Authorize performs a full
// client credentials grant regardless of the cached state.
type TokenManager interface {
	quoterhttp.TokenManager
	Authorize(ctx context.Context) (*quoter.Token, error)
}

// Client implements the quoter.Client interface.
type Client struct {
	httpClient   *quoterhttp.Client
	tokenManager TokenManager
	baseURL      string
	logger       quoter.Logger
	maxPages     int

	resources map[string]*ResourceClient
}

// New creates a Quoter API client that authenticates with the configured
// client credentials.
func New(config *quoter.Config) (*Client, error) {
	if config == nil {
		return nil, quoter.ErrConfigRequired
	}

	if config.ClientID == "" {
		return nil, quoter.ErrClientIDRequired
	}

	if config.ClientSecret == "" {
		return nil, quoter.ErrClientSecretRequired
	}

	tokenManager := auth.NewOAuthTokenManager(&auth.OAuthConfig{
		BaseURL: baseURL(config),
		Credentials: auth.Credentials{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
		},
		Store:         config.TokenStore,
		HTTPClient:    transportClient(config),
		TTL:           config.TokenTTL,
		ExpiryFromJWT: config.ExpiryFromJWT,
		UserAgent:     config.UserAgent,
		Logger:        config.Logger,
	})

	return NewWithTokenManager(config, tokenManager)
}

// NewWithTokenManager creates a client with a custom token manager.
func NewWithTokenManager(config *quoter.Config, tokenManager TokenManager) (*Client, error) {
	if config == nil {
		return nil, quoter.ErrConfigRequired
	}

	httpClient := quoterhttp.NewClient(baseURL(config), tokenManager, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL(config),
		logger:       config.Logger,
		maxPages:     config.MaxPages,
	}

	if client.logger == nil {
		client.logger = logger.Nop{}
	}

	client.initializeResourceClients()

	return client, nil
}

func baseURL(config *quoter.Config) string {
	if config.BaseURL == "" {
		return quoter.DefaultBaseURL
	}

	return strings.TrimSuffix(config.BaseURL, "/")
}

func transportClient(config *quoter.Config) *http.Client {
	if config.HTTPClient != nil {
		return config.HTTPClient
	}

	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	return &http.Client{Timeout: timeout}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *quoter.Config) []quoterhttp.Option {
	httpOpts := []quoterhttp.Option{
		quoterhttp.WithHTTPClient(transportClient(config)),
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, quoterhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, quoterhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, quoterhttp.WithUserAgent(config.UserAgent))
	}

	if config.RateLimit > 0 {
		httpOpts = append(httpOpts, quoterhttp.WithRateLimit(config.RateLimit))
	}

	if config.IdempotencyKeys {
		httpOpts = append(httpOpts, quoterhttp.WithIdempotencyKeys(true))
	}

	if config.RetryWaitUnit > 0 {
		httpOpts = append(httpOpts, quoterhttp.WithRetryWaitUnit(config.RetryWaitUnit))
	}

	return httpOpts
}

func (c *Client) initializeResourceClients() {
	c.resources = make(map[string]*ResourceClient, len(quoter.Resources))

	for i := range quoter.Resources {
		resource := &quoter.Resources[i]
		c.resources[resource.Name] = NewResourceClient(c, resource)
	}
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() TokenManager {
	return c.tokenManager
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Resource implements quoter.Client.Resource.
func (c *Client) Resource(name string) (quoter.ResourceClient, error) {
	resource, ok := c.resources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", quoter.ErrUnknownResource, name)
	}

	return resource, nil
}

// Request implements quoter.Client.Request.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, query quoter.Params) (interface{}, error) {
	return c.httpClient.Request(ctx, method, path, body, query)
}

// TestCredentials implements quoter.Client.TestCredentials.
func (c *Client) TestCredentials(ctx context.Context) error {
	if c.tokenManager == nil {
		return constants.ErrNoTokenManager
	}

	_, err := c.tokenManager.Authorize(ctx)
	if err != nil {
		return fmt.Errorf("testing credentials: %w", err)
	}

	return nil
}
