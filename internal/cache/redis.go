// Package cache keeps per-entity ranking histories in redis so repeated
// pipeline runs do not re-read unchanged history from Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sportsviz/etl/internal/metrics"
	"sportsviz/etl/internal/ranking"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "sportsviz:history:"

// Config holds redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache stores ranking histories as JSON, one key per (namespace, entity).
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redis and verifies the connection.
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Int("db", cfg.DB).
		Msg("Successfully connected to redis")

	return NewRedisCacheWithClient(client, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(namespace string, entity ranking.EntityID) string {
	return keyPrefix + namespace + ":" + entity.String()
}

// GetHistories returns the cached histories of entities. Entities without a
// cache entry are missing from the map; a cached empty history is present
// with a nil slice.
func (c *RedisCache) GetHistories(ctx context.Context, namespace string, entities []ranking.EntityID) (map[ranking.EntityID][]ranking.Snapshot, error) {
	if len(entities) == 0 {
		return map[ranking.EntityID][]ranking.Snapshot{}, nil
	}
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("mget", time.Since(start).Seconds()) }()

	keys := make([]string, len(entities))
	for i, e := range entities {
		keys[i] = key(namespace, e)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cached histories: %w", err)
	}

	out := make(map[ranking.EntityID][]ranking.Snapshot, len(entities))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var history []ranking.Snapshot
		if err := json.Unmarshal([]byte(s), &history); err != nil {
			log.Warn().Err(err).Str("key", keys[i]).Msg("Discarding unreadable cache entry")
			continue
		}
		out[entities[i]] = history
	}
	return out, nil
}

// SetHistories caches the history of each entity in histories.
func (c *RedisCache) SetHistories(ctx context.Context, namespace string, histories map[ranking.EntityID][]ranking.Snapshot) error {
	if len(histories) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordCacheOperation("set", time.Since(start).Seconds()) }()

	pipe := c.client.Pipeline()
	for entity, history := range histories {
		data, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to encode history of %s: %w", entity, err)
		}
		pipe.Set(ctx, key(namespace, entity), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cached histories: %w", err)
	}
	return nil
}

// Invalidate drops every cached history in namespace.
func (c *RedisCache) Invalidate(ctx context.Context, namespace string) (int, error) {
	var deleted int
	iter := c.client.Scan(ctx, 0, keyPrefix+namespace+":*", 500).Iterator()
	var batch []string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += int(n)
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 500 {
			if err := flush(); err != nil {
				return deleted, fmt.Errorf("failed to invalidate cache: %w", err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan cache: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return deleted, nil
}

// Health pings redis.
func (c *RedisCache) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Close closes the redis client.
func (c *RedisCache) Close() error {
	if err := c.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	log.Info().Msg("Redis connection closed")
	return nil
}
