package http

import (
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
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// IdempotencyKeyHeader carries the per-call key sent with POST requests.
const IdempotencyKeyHeader = "Idempotency-Key"

// TokenManager supplies bearer tokens to the executor.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	ClearAccessToken(ctx context.Context) error
}

// Request describes a single API call.
type Request struct {
	Method  string
	Path    string
	Query   quoter.Params
	Body    interface{}
	Headers map[string]string
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte

	// Attempts counts the requests sent, including retries.
	Attempts int
}

// Client executes authenticated requests against the Quoter API and applies
// the 429 and 401 retry policy.
type Client struct {
	baseURL         string
	tokenManager    TokenManager
	httpClient      *http.Client
	retryClient     *retryablehttp.Client
	logger          quoter.Logger
	debug           bool
	userAgent       string
	limiter         *RateLimiter
	idempotencyKeys bool
	maxRetries      int
	waitUnit        time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger quoter.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient replaces the transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRateLimit enables the client-side limiter. Zero or less disables it.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = NewRateLimiter(requestsPerSecond)
		}
	}
}

// WithIdempotencyKeys adds an Idempotency-Key to POST requests.
func WithIdempotencyKeys(enabled bool) Option {
	return func(c *Client) {
		c.idempotencyKeys = enabled
	}
}

// WithRetryWaitUnit scales Retry-After and the exponential backoff.
func WithRetryWaitUnit(unit time.Duration) Option {
	return func(c *Client) {
		if unit > 0 {
			c.waitUnit = unit
		}
	}
}

// NewClient creates a request executor. A nil token manager sends requests
// without an Authorization header.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		logger:       logger.Nop{},
		userAgent:    constants.DefaultUserAgent,
		maxRetries:   constants.MaxRetries,
		waitUnit:     constants.DefaultRetryWaitUnit,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = client.httpClient
	retryClient.RetryMax = client.maxRetries
	retryClient.CheckRetry = client.checkRetry
	retryClient.Backoff = client.backoff
	retryClient.PrepareRetry = client.prepareRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	if client.debug {
		retryClient.Logger = &leveledLogger{logger: client.logger}
	}

	client.retryClient = retryClient

	return client
}

// Do sends the request and returns the response, or an *quoter.APIError
// once retries are exhausted. Token failures surface as *quoter.AuthError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if query := EncodeQuery(req.Query); len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var rawBody interface{}

	if req.Body != nil {
		body, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		rawBody = body
	}

	state := &attemptState{}
	ctx = withAttemptState(ctx, state)

	retryReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	retryReq.Header.Set("Content-Type", "application/json")
	retryReq.Header.Set("Accept", "application/json")

	if c.userAgent != "" {
		retryReq.Header.Set("User-Agent", c.userAgent)
	}

	for key, value := range req.Headers {
		retryReq.Header.Set(key, value)
	}

	// One key per call, shared by every retry of it.
	if c.idempotencyKeys && req.Method == http.MethodPost && retryReq.Header.Get(IdempotencyKeyHeader) == "" {
		retryReq.Header.Set(IdempotencyKeyHeader, uuid.NewString())
	}

	err = c.authorize(ctx, retryReq.Request)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.retryClient.Do(retryReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, translateTransportError(err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &quoter.APIError{Message: "failed to read response body", HTTPCode: httpResp.StatusCode, Err: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Attempts:   state.attempts(),
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   req.Method,
			"url":      fullURL,
			"status":   httpResp.StatusCode,
			"attempts": resp.Attempts,
			"duration": time.Since(start).String(),
		})
	}

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, translateStatusError(httpResp.StatusCode, body)
	}

	return resp, nil
}

// Request sends a request and decodes the JSON body. An empty body decodes to nil.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, query quoter.Params) (interface{}, error) {
	resp, err := c.Do(ctx, &Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	return decodeBody(resp)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query quoter.Params) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}, query quoter.Params) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Query: query})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}, query quoter.Params) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body, Query: query})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// authorize waits for the limiter and sets a fresh bearer token. It runs
// before every attempt so a token replaced after a 401 is picked up.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return &quoter.APIError{Message: "waiting for rate limiter", Err: err}
		}
	}

	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)

	return nil
}

func (c *Client) prepareRetry(req *http.Request) error {
	return c.authorize(req.Context(), req)
}

func decodeBody(resp *Response) (interface{}, error) {
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return nil, nil
	}

	var result interface{}

	err := json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, &quoter.APIError{Message: "failed to parse response body", HTTPCode: resp.StatusCode, Err: err}
	}

	return result, nil
}

func translateTransportError(err error) error {
	authErr := &quoter.AuthError{}
	if errors.As(err, &authErr) {
		return err
	}

	apiErr := &quoter.APIError{}
	if errors.As(err, &apiErr) {
		return err
	}

	return &quoter.APIError{Message: fmt.Sprintf("request failed: %v", err), Err: err}
}

func translateStatusError(statusCode int, body []byte) error {
	if envelope, ok := quoter.ParseErrorEnvelope(body); ok {
		return quoter.NewAPIErrorFromEnvelope(envelope, statusCode)
	}

	return &quoter.APIError{
		Message:  fmt.Sprintf("request failed with status code %d: %s", statusCode, http.StatusText(statusCode)),
		HTTPCode: statusCode,
	}
}
