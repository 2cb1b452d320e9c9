package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"stokcast/backend/internal/domain"
)

type RedisRecommendationCache struct {
	client *redis.Client
}

func NewRedisRecommendationCache(addr string, password string, db int) *RedisRecommendationCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisRecommendationCache{client: client}
}

func (c *RedisRecommendationCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisRecommendationCache) Close() error {
	return c.client.Close()
}

func (c *RedisRecommendationCache) Get(ctx context.Context, key string) (*domain.Recommendation, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var rec domain.Recommendation
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, false, fmt.Errorf("decode cached recommendation %s: %w", key, err)
	}
	return &rec, true, nil
}

func (c *RedisRecommendationCache) Set(ctx context.Context, key string, value *domain.Recommendation, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}
