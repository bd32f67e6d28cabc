// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"authlink/config"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds persisted session snapshots.
	SessionCacheClient *redis.Client
	// FlowCacheClient holds phone OTP verification state.
	FlowCacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitSessionCache initializes the Redis client used for session snapshots.
func InitSessionCache() {
	SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB, "Session Cache")
}

// GetSessionCacheClient returns the session snapshot client.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		InitSessionCache()
	}
	return SessionCacheClient
}

// InitFlowCache initializes the Redis client used for phone verification flows.
func InitFlowCache() {
	FlowCacheClient = newRedisClient(config.AppConfig.RedisFlowDB, "Flow Cache")
}

// GetFlowCacheClient returns the phone verification flow client.
func GetFlowCacheClient() *redis.Client {
	if FlowCacheClient == nil {
		InitFlowCache()
	}
	return FlowCacheClient
}

// InitRedis initializes every Redis client the service uses.
func InitRedis() {
	GetSessionCacheClient()
	GetFlowCacheClient()
}
