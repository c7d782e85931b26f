package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/quoter-client/internal/constants"
	"github.com/fivetwenty-io/quoter-client/pkg/quoter"
	"github.com/nats-io/nats.go"
)

// NATSConfig configures a NATS JetStream KV token store.
type NATSConfig struct {
	// URL of the NATS server, e.g. nats://127.0.0.1:4222.
	URL string

	// Bucket is created when it does not exist.
	Bucket string

	// Key identifies the credential set inside the bucket.
	Key string

	// TTL is applied to the bucket on creation. Zero keeps entries forever.
	TTL time.Duration

	Options []nats.Option
}

// kvBucket is the subset of a KV bucket the store needs.
type kvBucket interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// natsBucket adapts nats.KeyValue to kvBucket.
type natsBucket struct {
	kv nats.KeyValue
}

func (b natsBucket) Get(key string) ([]byte, error) {
	entry, err := b.kv.Get(key)
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return entry.Value(), nil
}

func (b natsBucket) Put(key string, value []byte) error {
	_, err := b.kv.Put(key, value)

	return err
}

func (b natsBucket) Delete(key string) error {
	err := b.kv.Delete(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil
	}

	return err
}

// NATSTokenStore shares token state between processes through a JetStream
// key-value bucket.
type NATSTokenStore struct {
	bucket kvBucket
	key    string
	conn   *nats.Conn
}

// NewNATSTokenStore connects to NATS and opens or creates the bucket.
func NewNATSTokenStore(config *NATSConfig) (*NATSTokenStore, error) {
	if config == nil || config.URL == "" {
		return nil, constants.ErrNATSURLRequired
	}

	bucketName := config.Bucket
	if bucketName == "" {
		bucketName = constants.DefaultNATSBucket
	}

	conn, err := nats.Connect(config.URL, config.Options...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucketName)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucketName,
			Description: "Quoter API token cache",
			TTL:         config.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening KV bucket '%s': %w", bucketName, err)
	}

	store := newNATSTokenStore(natsBucket{kv: kv}, config.Key)
	store.conn = conn

	return store, nil
}

func newNATSTokenStore(bucket kvBucket, key string) *NATSTokenStore {
	if key == "" {
		key = constants.DefaultTokenKey
	}

	return &NATSTokenStore{bucket: bucket, key: key}
}

// Get reads the token from the bucket.
func (s *NATSTokenStore) Get(_ context.Context) (*quoter.Token, error) {
	data, err := s.bucket.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("reading token from NATS: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var token quoter.Token

	err = json.Unmarshal(data, &token)
	if err != nil {
		return nil, fmt.Errorf("decoding token from NATS: %w", err)
	}

	return &token, nil
}

// Set writes the token to the bucket.
func (s *NATSTokenStore) Set(ctx context.Context, token *quoter.Token) error {
	if token == nil {
		return s.Clear(ctx)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	err = s.bucket.Put(s.key, data)
	if err != nil {
		return fmt.Errorf("writing token to NATS: %w", err)
	}

	return nil
}

// Clear deletes the token from the bucket.
func (s *NATSTokenStore) Clear(_ context.Context) error {
	err := s.bucket.Delete(s.key)
	if err != nil {
		return fmt.Errorf("deleting token from NATS: %w", err)
	}

	return nil
}

// Close drains the NATS connection, if the store owns one.
func (s *NATSTokenStore) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Drain()
}
