package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"authlink/models"
	"authlink/utils"

	"github.com/go-redis/redis/v8"
)

// Store persists session snapshots so they survive a restart.
type Store interface {
	Save(ctx context.Context, sess *models.Session) error
	// Load returns nil, nil when no snapshot exists.
	Load(ctx context.Context, uid string) (*models.Session, error)
	Delete(ctx context.Context, uid string) error
}

// RedisStore keeps snapshots in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = utils.SessionCacheTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, utils.SessionCachePrefix+sess.UID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, uid string) (*models.Session, error) {
	data, err := s.client.Get(ctx, utils.SessionCachePrefix+uid).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, uid string) error {
	return s.client.Del(ctx, utils.SessionCachePrefix+uid).Err()
}
