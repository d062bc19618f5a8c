package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/cinedash/internal/dashboard/store"
	"github.com/aussiebroadwan/cinedash/pkg/idx"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "cinedash:client"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
	TTL      time.Duration
}

// Store keeps client storage in Redis. Expiry is delegated to Redis key
// TTLs so DeleteExpired has nothing to do.
// Key format: cinedash:client:<client_id>:<key>
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

var _ store.ClientStorage = (*Store)(nil)

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewStore(client, cfg.TTL), nil
}

// NewStore wraps an existing client. A ttl of zero uses store.DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = store.DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, clientID idx.ID, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(clientID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, clientID idx.ID, key, value string) error {
	if err := s.client.Set(ctx, s.key(clientID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, clientID idx.ID, key string) error {
	if err := s.client.Del(ctx, s.key(clientID, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpired(context.Context) (int64, error) { return 0, nil }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) key(clientID idx.ID, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, clientID, key)
}
