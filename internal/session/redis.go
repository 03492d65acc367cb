package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "dashboard:session:"
	defaultTTL = 24 * time.Hour
)

// RedisStore shares the cached record between processes through Redis, under
// one key per session.
type RedisStore struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore returns a store for the session identified by key.
func NewRedisStore(rdb *redis.Client, key string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, key: keyPrefix + key, ttl: ttl}
}

// Get returns the cached record or nil if miss.
func (s *RedisStore) Get(ctx context.Context) (*domain.User, error) {
	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(b, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Set stores the record and refreshes the TTL.
func (s *RedisStore) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return s.Clear(ctx)
	}
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
