package auth

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every TokenStore must share.
func exerciseStore(t *testing.T, store quoter.TokenStore) {
	t.Helper()

	ctx := context.Background()

	empty, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	expiresAt := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())
	require.NoError(t, store.Set(ctx, &quoter.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    expiresAt,
	}))

	stored, err := store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "access", stored.AccessToken)
	assert.Equal(t, "refresh", stored.RefreshToken)
	assert.True(t, expiresAt.Equal(stored.ExpiresAt))

	// Replaced wholesale, never merged.
	require.NoError(t, store.Set(ctx, &quoter.Token{RefreshToken: "only-refresh"}))

	stored, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored.AccessToken)
	assert.Equal(t, "only-refresh", stored.RefreshToken)
	assert.True(t, stored.ExpiresAt.IsZero())

	require.NoError(t, store.Clear(ctx))

	cleared, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cleared)
}

func TestMemoryTokenStore(t *testing.T) {
	t.Parallel()

	store := NewMemoryTokenStore()
	exerciseStore(t, store)

	t.Run("returned tokens are copies", func(t *testing.T) {
		t.Parallel()

		store := NewMemoryTokenStore()
		require.NoError(t, store.Set(context.Background(), &quoter.Token{AccessToken: "original"}))

		token, err := store.Get(context.Background())
		require.NoError(t, err)

		token.AccessToken = "mutated"

		again, err := store.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "original", again.AccessToken)
	})
}

func TestSQLiteTokenStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tokens.db")

	store, err := NewSQLiteTokenStore(context.Background(), path, "")
	require.NoError(t, err)

	exerciseStore(t, store)

	t.Run("survives reopening", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reopen.db")

		first, err := NewSQLiteTokenStore(context.Background(), path, "account-a")
		require.NoError(t, err)
		require.NoError(t, first.Set(context.Background(), &quoter.Token{AccessToken: "persisted", RefreshToken: "r"}))
		require.NoError(t, first.Close())

		second, err := NewSQLiteTokenStore(context.Background(), path, "account-a")
		require.NoError(t, err)

		defer func() { _ = second.Close() }()

		token, err := second.Get(context.Background())
		require.NoError(t, err)
		require.NotNil(t, token)
		assert.Equal(t, "persisted", token.AccessToken)

		other, err := NewSQLiteTokenStore(context.Background(), path, "account-b")
		require.NoError(t, err)

		defer func() { _ = other.Close() }()

		missing, err := other.Get(context.Background())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	require.NoError(t, store.Close())

	_, err = NewSQLiteTokenStore(context.Background(), "", "")
	require.ErrorIs(t, err, constants.ErrSQLitePathRequired)
}

// fakeBucket is an in-memory kvBucket.
type fakeBucket struct {
	mutex  sync.Mutex
	values map[string][]byte
}

func (b *fakeBucket) Get(key string) ([]byte, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.values[key], nil
}

func (b *fakeBucket) Put(key string, value []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.values == nil {
		b.values = make(map[string][]byte)
	}

	b.values[key] = value

	return nil
}

func (b *fakeBucket) Delete(key string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	delete(b.values, key)

	return nil
}

func TestNATSTokenStore(t *testing.T) {
	t.Parallel()

	bucket := &fakeBucket{}
	store := newNATSTokenStore(bucket, "")
	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), &quoter.Token{AccessToken: "a", ExpiresAt: time.UnixMilli(1700000000000)}))
	assert.JSONEq(t, `{"access_token":"a","expires_at":1700000000000}`, string(bucket.values[constants.DefaultTokenKey]))
	assert.NoError(t, store.Close())

	_, err := NewNATSTokenStore(&NATSConfig{})
	require.ErrorIs(t, err, constants.ErrNATSURLRequired)
}

// fakePersister records profile tokens like the CLI config file would.
type fakePersister struct {
	tokens map[string]*quoter.Token
	loads  int
}

func (p *fakePersister) LoadToken(profile string) (*quoter.Token, error) {
	p.loads++

	return p.tokens[profile], nil
}

func (p *fakePersister) SaveToken(profile string, token *quoter.Token) error {
	if p.tokens == nil {
		p.tokens = make(map[string]*quoter.Token)
	}

	p.tokens[profile] = token

	return nil
}

func (p *fakePersister) ClearToken(profile string) error {
	delete(p.tokens, profile)

	return nil
}

func TestConfigTokenStore(t *testing.T) {
	t.Parallel()

	persister := &fakePersister{}
	store := NewConfigTokenStore(persister, "production")
	exerciseStore(t, store)
	assert.Equal(t, 1, persister.loads)

	t.Run("loads existing profile token", func(t *testing.T) {
		t.Parallel()

		persister := &fakePersister{tokens: map[string]*quoter.Token{
			"staging": {AccessToken: "from-config", RefreshToken: "r"},
		}}

		token, err := NewConfigTokenStore(persister, "staging").Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "from-config", token.AccessToken)
	})

	t.Run("missing persister", func(t *testing.T) {
		t.Parallel()

		_, err := NewConfigTokenStore(nil, "x").Get(context.Background())
		require.ErrorIs(t, err, ErrNoConfigPersister)
	})
}

func TestJWTExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	got, err := jwtExpiry(signed)
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "client"}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = jwtExpiry(noExp)
	require.ErrorIs(t, err, constants.ErrNoExpirationClaim)

	_, err = jwtExpiry("opaque-token")
	require.ErrorIs(t, err, constants.ErrInvalidJWTFormat)
}
