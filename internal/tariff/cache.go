package tariff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"palika/internal/config"
	"palika/internal/domain"
	"palika/internal/port"
)

// ConnectRedis initializes and pings a Redis client for the tariff cache.
func ConnectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a short-TTL read-through tariff cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) port.TariffCache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (*domain.TariffPlan, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("tariffCache.Get: %w", err)
	}
	var plan domain.TariffPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("tariffCache.Get decode: %w", err)
	}
	return &plan, nil
}

func (c *redisCache) Set(ctx context.Context, key string, plan *domain.TariffPlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("tariffCache.Set encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("tariffCache.Set: %w", err)
	}
	return nil
}
