// Package redis keeps the session token in Redis, for setups where several
// dashboard processes on one host share a login.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// keyPrefix namespaces every key this package writes.
const keyPrefix = "student-dashboard:"

// ErrUnavailable is returned by Connect when the server does not answer.
var ErrUnavailable = errors.New("redis: server unavailable")

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr returns "host:port".
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ══════════════════════════════════════════════════════════════════════════════
// TOKEN STORE
// ══════════════════════════════════════════════════════════════════════════════

// TokenStore keeps the session token under keyPrefix+key.
type TokenStore struct {
	client *redis.Client

	// ttl bounds how long a forgotten token lingers. Zero means forever.
	ttl time.Duration
}

var _ session.TokenStore = (*TokenStore)(nil)

// Connect opens a client and pings it within cfg.DialTimeout.
func Connect(cfg Config, ttl time.Duration) (*TokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w at %s: %v", ErrUnavailable, cfg.Addr(), err)
	}
	return NewTokenStore(client, ttl), nil
}

// NewTokenStore wraps an existing client without pinging it.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Ping reports whether the server answers.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *TokenStore) Close() error {
	return s.client.Close()
}

// Load implements session.TokenStore.
func (s *TokenStore) Load(ctx context.Context, key string) (string, error) {
	token, err := s.client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", shared.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis load token: %w", err)
	}
	return token, nil
}

// Save implements session.TokenStore. The ttl is refreshed on every save.
func (s *TokenStore) Save(ctx context.Context, key, token string) error {
	if err := s.client.Set(ctx, keyPrefix+key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis save token: %w", err)
	}
	return nil
}

// Delete implements session.TokenStore. A missing key is not an error.
func (s *TokenStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete token: %w", err)
	}
	return nil
}
