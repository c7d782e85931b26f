package quoter

import (
	"context"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Quoter API endpoint.
const DefaultBaseURL = "https://api.quoter.com/v1"

// ResourceClient provides the uniform verbs of one resource.
type ResourceClient interface {
	Create(ctx context.Context, body map[string]interface{}, options *QueryOptions) (interface{}, error)
	Get(ctx context.Context, id string, options *QueryOptions) (interface{}, error)
	List(ctx context.Context, params Params) (*ListResponse, error)
	ListAll(ctx context.Context, params Params) ([]Record, error)
	Update(ctx context.Context, id string, body map[string]interface{}, options *QueryOptions) (interface{}, error)
	Delete(ctx context.Context, id string) (interface{}, error)
}

// Client is the Quoter API client.
type Client interface {
	// Resource returns the client for a resource of the resource table.
	Resource(name string) (ResourceClient, error)

	// Execute validates and runs a single operation. getAll returns []Record.
	Execute(ctx context.Context, resource string, operation Operation, params *OperationParams) (interface{}, error)

	// RunBatch runs items sequentially. With continueOnFail a failing item
	// yields a BatchResult carrying the error message and the run goes on;
	// otherwise the first failure is returned alongside the results so far.
	RunBatch(ctx context.Context, items []BatchItem, continueOnFail bool) ([]BatchResult, error)

	// Request issues one authenticated request and returns the decoded body.
	Request(ctx context.Context, method, path string, body interface{}, query Params) (interface{}, error)

	// RequestAllItems drains a paginated collection.
	RequestAllItems(ctx context.Context, method, path string, query Params) ([]Record, error)

	// TestCredentials performs a client credentials authorization.
	TestCredentials(ctx context.Context) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a quoter.Client.
//
// # Tokens
//
// Tokens are cached in TokenStore, which defaults to an in-memory store. The
// API does not report token lifetimes, so a fetched token is assumed valid for
// TokenTTL (one hour by default). With ExpiryFromJWT the exp claim of a JWT
// access token is used instead when present.
//
// # Retries
//
// A 429 is retried up to three times, waiting Retry-After seconds or 2^n
// seconds. A 401 on the first attempt clears the cached access token and is
// retried once. Retries do not distinguish HTTP verbs; IdempotencyKeys adds
// an Idempotency-Key header to POST requests that is reused across retries.
//
// # Pagination
//
// MaxPages bounds RequestAllItems. Zero keeps the loop unbounded and relies on
// the server clearing has_more.
type Config struct {
	// BaseURL is the API root. Defaults to DefaultBaseURL. A trailing slash is
	// trimmed and https:// is added when no scheme is present.
	BaseURL string

	// ClientID and ClientSecret are the OAuth client credentials.
	ClientID     string
	ClientSecret string

	// TokenStore caches token state. Defaults to an in-memory store.
	TokenStore TokenStore

	// TokenTTL overrides the assumed token lifetime.
	TokenTTL time.Duration

	// ExpiryFromJWT reads expires_at from the exp claim of JWT access tokens.
	ExpiryFromJWT bool

	// HTTPClient replaces the underlying transport client.
	HTTPClient *http.Client

	// HTTPTimeout applies when HTTPClient is nil.
	HTTPTimeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// RateLimit bounds requests per second on the client side. Zero disables it.
	RateLimit float64

	// IdempotencyKeys enables Idempotency-Key headers on POST requests.
	IdempotencyKeys bool

	// MaxPages caps the number of pages RequestAllItems fetches.
	MaxPages int

	// RetryWaitUnit scales the 429 waits. Defaults to one second.
	RetryWaitUnit time.Duration

	// Logger receives client logs. Defaults to a no-op logger.
	Logger Logger

	// Debug logs every request and response at debug level.
	Debug bool
}
