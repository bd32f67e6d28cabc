package auth

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

var ErrFlowNotFound = errors.New("phone flow not found")

// FlowStore persists phone verification flows between the send and verify requests.
type FlowStore interface {
	Save(ctx context.Context, flow *models.PhoneFlow) error
	Load(ctx context.Context, id string) (*models.PhoneFlow, error)
	Delete(ctx context.Context, id string) error
}

type RedisFlowStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFlowStore(client *redis.Client, ttl time.Duration) *RedisFlowStore {
	return &RedisFlowStore{client: client, ttl: ttl}
}

func flowKey(id string) string {
	return utils.PhoneFlowPrefix + id
}

func (s *RedisFlowStore) Save(ctx context.Context, flow *models.PhoneFlow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to encode phone flow: %w", err)
	}
	if err := s.client.Set(ctx, flowKey(flow.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save phone flow: %w", err)
	}
	return nil
}

func (s *RedisFlowStore) Load(ctx context.Context, id string) (*models.PhoneFlow, error) {
	data, err := s.client.Get(ctx, flowKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load phone flow: %w", err)
	}
	var flow models.PhoneFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to decode phone flow: %w", err)
	}
	return &flow, nil
}

func (s *RedisFlowStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, flowKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete phone flow: %w", err)
	}
	return nil
}
