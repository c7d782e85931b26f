package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as credential checks.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry policy.
const (
	// MaxRetries is the retry budget shared by 429 and 401 handling.
	MaxRetries = 3

	// DefaultRetryWaitUnit is the unit of Retry-After and the exponential backoff.
	DefaultRetryWaitUnit = time.Second
)

// Token handling.
const (
	// DefaultTokenTTL is the lifetime assumed for tokens, the API does not report one.
	DefaultTokenTTL = time.Hour

	// ClientCredentialsGrant is the OAuth grant type used for authorization.
	ClientCredentialsGrant = "client_credentials"

	// AuthorizePath is the client credentials endpoint.
	AuthorizePath = "/auth/oauth/authorize"

	// RefreshPath is the refresh token endpoint.
	RefreshPath = "/auth/refresh"
)

// Pagination.
const (
	// PageSize is the fixed page size used when draining collections.
	PageSize = 100

	// FirstPage is the first page number of a collection.
	FirstPage = 1
)

// Token store backends.
const (
	// DefaultNATSBucket is the JetStream KV bucket for shared token state.
	DefaultNATSBucket = "quoter_tokens"

	// DefaultSQLiteTable is the table holding cached tokens.
	DefaultSQLiteTable = "quoter_tokens"

	// DefaultTokenKey names the credential set inside shared stores.
	DefaultTokenKey = "default"
)

// CLI defaults.
const (
	// ConfigDirName is the directory under $HOME holding CLI state.
	ConfigDirName = ".quoter"

	// ConfigFileName is the CLI configuration file.
	ConfigFileName = "config.yml"

	// EnvPrefix is the viper environment prefix.
	EnvPrefix = "QUOTER"

	// DefaultUserAgent identifies the client.
	DefaultUserAgent = "quoter-client-go/1.0"

	// MinimumArgumentCount is the minimum number of command line arguments.
	MinimumArgumentCount = 2

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)
