package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/gosimple/slug"
)

// Redis key prefix for persisted session identifiers
const sessionKeyPrefix = "kyc:session:"

// RedisStore persists the session identifier in Redis. Used on kiosk and
// shared-terminal deployments where the local filesystem is wiped between
// sessions but the flow must still survive an interruption.
type RedisStore struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

// NewRedisStore creates a Redis-backed store for the given profile
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client: client,
		key:    sessionKeyPrefix + slug.Make(profile),
		ctx:    context.Background(),
	}
}

// SaveSessionID stores the identifier under the profile key
func (s *RedisStore) SaveSessionID(id string) error {
	if err := s.client.Set(s.ctx, s.key, id, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session id: %w", err)
	}
	return nil
}

// LoadSessionID retrieves the stored identifier, returning "" when none exists
func (s *RedisStore) LoadSessionID() (string, error) {
	id, err := s.client.Get(s.ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to load session id: %w", err)
	}
	return id, nil
}

// ClearSessionID removes the stored identifier
func (s *RedisStore) ClearSessionID() error {
	if err := s.client.Del(s.ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session id: %w", err)
	}
	return nil
}
