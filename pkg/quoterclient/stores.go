package quoterclient

import (
	"context"

	"github.com/fivetwenty-io/quoter-client/internal/auth"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
)

// NATSConfig configures a token store kept in a NATS JetStream key-value bucket.
type NATSConfig = auth.NATSConfig

// NewMemoryTokenStore returns a process-local token store.
func NewMemoryTokenStore() quoter.TokenStore {
	return auth.NewMemoryTokenStore()
}

// NewSQLiteTokenStore opens a token store in the SQLite database at path.
// Tokens of different credential sets can share a database under distinct keys.
func NewSQLiteTokenStore(ctx context.Context, path, key string) (*auth.SQLiteTokenStore, error) {
	return auth.NewSQLiteTokenStore(ctx, path, key)
}

// NewNATSTokenStore connects to NATS and opens, or creates, the token bucket.
// Processes sharing the bucket and key share one token.
func NewNATSTokenStore(config *NATSConfig) (*auth.NATSTokenStore, error) {
	return auth.NewNATSTokenStore(config)
}
