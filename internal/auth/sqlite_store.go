package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"

	// Registers the pure Go "sqlite" driver.
	_ "modernc.org/sqlite"
)

const createTokensTable = `CREATE TABLE IF NOT EXISTS ` + constants.DefaultSQLiteTable + ` (
	token_key     TEXT PRIMARY KEY,
	access_token  TEXT    NOT NULL DEFAULT '',
	refresh_token TEXT    NOT NULL DEFAULT '',
	expires_at    INTEGER NOT NULL DEFAULT 0,
	updated_at    INTEGER NOT NULL
)`

const selectToken = `SELECT access_token, refresh_token, expires_at FROM ` + constants.DefaultSQLiteTable + ` WHERE token_key = ?`

const upsertToken = `INSERT INTO ` + constants.DefaultSQLiteTable + ` (token_key, access_token, refresh_token, expires_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(token_key) DO UPDATE SET
	access_token = excluded.access_token,
	refresh_token = excluded.refresh_token,
	expires_at = excluded.expires_at,
	updated_at = excluded.updated_at`

const deleteToken = `DELETE FROM ` + constants.DefaultSQLiteTable + ` WHERE token_key = ?`

// SQLiteTokenStore keeps token state in a SQLite database so it survives
// restarts. expires_at is stored as epoch milliseconds.
type SQLiteTokenStore struct {
	db  *sql.DB
	key string
}

// NewSQLiteTokenStore opens the database at path and creates the table.
func NewSQLiteTokenStore(ctx context.Context, path, key string) (*SQLiteTokenStore, error) {
	if path == "" {
		return nil, constants.ErrSQLitePathRequired
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, createTokensTable)
	if err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating tokens table: %w", err)
	}

	if key == "" {
		key = constants.DefaultTokenKey
	}

	return &SQLiteTokenStore{db: db, key: key}, nil
}

// Get reads the token row.
func (s *SQLiteTokenStore) Get(ctx context.Context) (*quoter.Token, error) {
	var (
		token     quoter.Token
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx, selectToken, s.key).Scan(&token.AccessToken, &token.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading token: %w", err)
	}

	if expiresAt != 0 {
		token.ExpiresAt = time.UnixMilli(expiresAt)
	}

	return &token, nil
}

// Set upserts the token row.
func (s *SQLiteTokenStore) Set(ctx context.Context, token *quoter.Token) error {
	if token == nil {
		return s.Clear(ctx)
	}

	var expiresAt int64
	if !token.ExpiresAt.IsZero() {
		expiresAt = token.ExpiresAt.UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, upsertToken,
		s.key, token.AccessToken, token.RefreshToken, expiresAt, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing token: %w", err)
	}

	return nil
}

// Clear deletes the token row.
func (s *SQLiteTokenStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, deleteToken, s.key)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}
