// Package session caches verified bearer credentials in redis so repeat
// requests skip signature verification.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"luggo/internal/auth"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var (
	ErrMiss    = errors.New("session not cached")
	ErrRevoked = errors.New("session revoked")
)

// revokedMarker replaces the cached identity of a signed-out token.
const revokedMarker = "revoked"

// RedisStore maps token hashes to verified identities.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "luggo:session:",
		ttl:    ttl,
	}
}

// HashToken is the cache key material; raw tokens never reach redis.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *RedisStore) key(token string) string {
	return s.prefix + HashToken(token)
}

// Save caches ident for token until the earlier of the store TTL and the
// token's own expiry.
func (s *RedisStore) Save(ctx context.Context, token string, ident *auth.Identity) error {
	ttl := s.ttl
	if !ident.ExpiresAt.IsZero() {
		if left := time.Until(ident.ExpiresAt); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, token string) (*auth.Identity, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if string(data) == revokedMarker {
		return nil, ErrRevoked
	}

	var ident auth.Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return nil, fmt.Errorf("unmarshal identity: %w", err)
	}
	return &ident, nil
}

// Revoke marks token as signed out until it expires. A zero expiry falls
// back to the store TTL.
func (s *RedisStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := s.ttl
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
	}
	if ttl <= 0 {
		// expired tokens fail verification on their own
		if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		return nil
	}

	if err := s.client.Set(ctx, s.key(token), revokedMarker, ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
