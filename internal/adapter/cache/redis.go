// internal/adapter/cache/redis.go

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trendwise/internal/domain/trend"
)

// DefaultRedisKey is where the aggregated list is stored
const DefaultRedisKey = "trendwise:trends"

// RedisTrendCache shares the aggregated list between instances through Redis
type RedisTrendCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisClient connects to the Redis server at rawURL and checks it answers
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewRedisTrendCache creates a Redis-backed trend cache
func NewRedisTrendCache(client *redis.Client, key string, ttl time.Duration, log zerolog.Logger) *RedisTrendCache {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisTrendCache{
		client: client,
		key:    key,
		ttl:    ttl,
		log:    log.With().Str("component", "redis_cache").Logger(),
	}
}

// Get returns the cached list. Redis being unreachable counts as a miss.
func (r *RedisTrendCache) Get(ctx context.Context) ([]trend.Trend, bool) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Msg("cache read failed")
		}
		return nil, false
	}

	var trends []trend.Trend
	if err := json.Unmarshal(raw, &trends); err != nil {
		r.log.Warn().Err(err).Msg("cached trends unreadable, ignoring")
		return nil, false
	}
	return trends, true
}

// Set replaces the cached list
func (r *RedisTrendCache) Set(ctx context.Context, trends []trend.Trend) {
	raw, err := json.Marshal(trends)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to encode trends")
		return
	}
	if err := r.client.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		r.log.Warn().Err(err).Msg("cache write failed")
	}
}
