package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/internal/logger"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"golang.org/x/sync/singleflight"
)

// MissingAccessTokenMessage is the AuthError message when authorization
// succeeds without returning a token.
const MissingAccessTokenMessage = "Failed to obtain access token"

// Static errors for err113 compliance.
var (
	ErrMissingAccessToken = errors.New("response did not contain an access token")
	ErrTokenEndpoint      = errors.New("token endpoint returned an error")
)

// Credentials are the OAuth client credentials of one Quoter account.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthConfig configures an OAuthTokenManager.
type OAuthConfig struct {
	// BaseURL is the API root the auth endpoints live under.
	BaseURL string

	Credentials Credentials

	// Store caches token state. Defaults to a MemoryTokenStore.
	Store quoter.TokenStore

	// HTTPClient is used for token requests.
	HTTPClient *http.Client

	// TTL is the lifetime assumed for fetched tokens. Defaults to one hour.
	TTL time.Duration

	// ExpiryFromJWT uses the exp claim of JWT access tokens when present.
	ExpiryFromJWT bool

	UserAgent string
	Logger    quoter.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// OAuthTokenManager obtains, caches and refreshes bearer tokens using the
// client credentials flow. Concurrent acquisitions on one manager share a
// single upstream call.
type OAuthTokenManager struct {
	baseURL     string
	credentials Credentials
	store       quoter.TokenStore
	httpClient  *http.Client
	ttl         time.Duration
	jwtExpiry   bool
	userAgent   string
	logger      quoter.Logger
	now         func() time.Time
	group       singleflight.Group
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewOAuthTokenManager creates a token manager.
func NewOAuthTokenManager(config *OAuthConfig) *OAuthTokenManager {
	manager := &OAuthTokenManager{
		baseURL:     strings.TrimSuffix(config.BaseURL, "/"),
		credentials: config.Credentials,
		store:       config.Store,
		httpClient:  config.HTTPClient,
		ttl:         config.TTL,
		jwtExpiry:   config.ExpiryFromJWT,
		userAgent:   config.UserAgent,
		logger:      config.Logger,
		now:         config.Now,
	}

	if manager.store == nil {
		manager.store = NewMemoryTokenStore()
	}

	if manager.httpClient == nil {
		manager.httpClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}

	if manager.ttl <= 0 {
		manager.ttl = constants.DefaultTokenTTL
	}

	if manager.logger == nil {
		manager.logger = logger.Nop{}
	}

	if manager.now == nil {
		manager.now = time.Now
	}

	return manager
}

// GetToken returns a usable access token. A cached token that has not
// expired is returned without any network call. Otherwise the refresh token
// is tried, and on any refresh failure a full client credentials
// authorization is performed.
func (m *OAuthTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.cachedToken(ctx)
	if err != nil {
		return "", err
	}

	if token.Valid(m.now()) {
		return token.AccessToken, nil
	}

	result, err, _ := m.group.Do("token", func() (interface{}, error) {
		return m.acquire(ctx)
	})
	if err != nil {
		return "", err
	}

	acquired, _ := result.(*quoter.Token)

	return acquired.AccessToken, nil
}

// RefreshToken forces a new token regardless of the cached expiry.
func (m *OAuthTokenManager) RefreshToken(ctx context.Context) error {
	err := m.ClearAccessToken(ctx)
	if err != nil {
		return err
	}

	_, err = m.GetToken(ctx)

	return err
}

// ClearAccessToken drops the cached access token but keeps the refresh
// token, so the next GetToken goes through the refresh path.
func (m *OAuthTokenManager) ClearAccessToken(ctx context.Context) error {
	token, err := m.cachedToken(ctx)
	if err != nil {
		return err
	}

	if token == nil {
		return nil
	}

	if token.RefreshToken == "" {
		err = m.store.Clear(ctx)
	} else {
		err = m.store.Set(ctx, &quoter.Token{RefreshToken: token.RefreshToken})
	}

	if err != nil {
		return fmt.Errorf("clearing cached access token: %w", err)
	}

	return nil
}

// SetToken seeds the store with a known token.
func (m *OAuthTokenManager) SetToken(ctx context.Context, token *quoter.Token) error {
	err := m.store.Set(ctx, token)
	if err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	return nil
}

// Authorize performs a client credentials authorization and stores the
// result, ignoring any cached state.
func (m *OAuthTokenManager) Authorize(ctx context.Context) (*quoter.Token, error) {
	token, err := m.authorize(ctx)
	if err != nil {
		return nil, err
	}

	m.persist(ctx, token)

	return token, nil
}

func (m *OAuthTokenManager) cachedToken(ctx context.Context) (*quoter.Token, error) {
	token, err := m.store.Get(ctx)
	if err != nil {
		return nil, &quoter.AuthError{Message: "reading cached token", Err: err}
	}

	return token, nil
}

func (m *OAuthTokenManager) acquire(ctx context.Context) (*quoter.Token, error) {
	current, err := m.cachedToken(ctx)
	if err != nil {
		return nil, err
	}

	// Another caller may have finished an acquisition while we waited.
	if current.Valid(m.now()) {
		return current, nil
	}

	if current != nil && current.RefreshToken != "" {
		token, refreshErr := m.refresh(ctx, current.RefreshToken)
		if refreshErr == nil {
			m.persist(ctx, token)

			return token, nil
		}

		m.logger.Debug("Token refresh failed, re-authorizing", map[string]interface{}{
			"error": refreshErr.Error(),
		})
	}

	token, err := m.authorize(ctx)
	if err != nil {
		return nil, err
	}

	m.persist(ctx, token)

	return token, nil
}

func (m *OAuthTokenManager) refresh(ctx context.Context, refreshToken string) (*quoter.Token, error) {
	response, err := m.postToken(ctx, constants.RefreshPath, map[string]string{
		"client_id":     m.credentials.ClientID,
		"client_secret": m.credentials.ClientSecret,
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}

	if response.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	newRefreshToken := response.RefreshToken
	if newRefreshToken == "" {
		newRefreshToken = refreshToken
	}

	m.logger.Debug("Access token refreshed", nil)

	return m.newToken(response.AccessToken, newRefreshToken), nil
}

func (m *OAuthTokenManager) authorize(ctx context.Context) (*quoter.Token, error) {
	response, err := m.postToken(ctx, constants.AuthorizePath, map[string]string{
		"client_id":     m.credentials.ClientID,
		"client_secret": m.credentials.ClientSecret,
		"grant_type":    constants.ClientCredentialsGrant,
	})
	if err != nil {
		return nil, &quoter.AuthError{Message: "authorization request failed", Err: err}
	}

	if response.AccessToken == "" {
		return nil, &quoter.AuthError{Message: MissingAccessTokenMessage}
	}

	m.logger.Debug("Access token obtained", nil)

	return m.newToken(response.AccessToken, response.RefreshToken), nil
}

func (m *OAuthTokenManager) newToken(accessToken, refreshToken string) *quoter.Token {
	return &quoter.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    m.expiry(accessToken),
	}
}

func (m *OAuthTokenManager) expiry(accessToken string) time.Time {
	if m.jwtExpiry {
		expiresAt, err := jwtExpiry(accessToken)
		if err == nil {
			return expiresAt
		}

		m.logger.Debug("Falling back to default token lifetime", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return m.now().Add(m.ttl)
}

// persist stores the token. A store failure does not fail the request; the
// token is still returned and the next call fetches a new one.
func (m *OAuthTokenManager) persist(ctx context.Context, token *quoter.Token) {
	err := m.store.Set(ctx, token)
	if err != nil {
		m.logger.Warn("Failed to persist token", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (m *OAuthTokenManager) postToken(ctx context.Context, path string, payload map[string]string) (*tokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if envelope, ok := quoter.ParseErrorEnvelope(data); ok {
			return nil, fmt.Errorf("%w: status %d: %s", ErrTokenEndpoint, resp.StatusCode, envelope.Message())
		}

		return nil, fmt.Errorf("%w: status %d", ErrTokenEndpoint, resp.StatusCode)
	}

	var response tokenResponse

	err = json.Unmarshal(data, &response)
	if err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	return &response, nil
}
