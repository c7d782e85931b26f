package constants

import "errors"

// Configuration errors.
var (
	ErrNotLoggedIn         = errors.New("no client credentials configured, use 'quoter login' first")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrSecretFieldsUnset   = errors.New("credential fields cannot be changed via config command, use 'quoter login'")
	ErrUnknownTokenStore   = errors.New("unknown token store")
	ErrNATSURLRequired     = errors.New("NATS URL is required for the nats token store")
	ErrSQLitePathRequired  = errors.New("SQLite path is required for the sqlite token store")
	ErrUnknownOutputFormat = errors.New("unknown output format")
)

// Token errors.
var (
	ErrInvalidJWTFormat  = errors.New("invalid JWT format")
	ErrNoExpirationClaim = errors.New("no expiration claim found")
	ErrNoTokenManager    = errors.New("no token manager configured")
)

// Batch errors.
var (
	ErrEmptyBatch        = errors.New("batch file contains no operations")
	ErrUnsupportedFormat = errors.New("unsupported batch file format")
)

// Pagination errors.
var (
	ErrTooManyPages = errors.New("pagination exceeded the maximum page count")
)
