package rediskv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store keeps each collection document in a single redis string key.
type Store struct {
	client *redis.Client
	prefix string
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

func New(cfg Config) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		prefix: cfg.Prefix,
	}
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, 0).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
