package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cinetrack/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Cache is a JSON value cache on top of Redis. A nil *Cache is valid and
// behaves as an always-missing cache, which is what tests and Redis-less
// deployments use.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redisURL (redis:// or plain host:port) and verifies the connection.
func New(redisURL, password string, ttl time.Duration) (*Cache, error) {
	opts, err := parseOptions(redisURL, password)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{client: rdb, ttl: ttl}, nil
}

func parseOptions(redisURL, password string) (*redis.Options, error) {
	var opts *redis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: redisURL}
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return opts, nil
}

// GetJSON decodes the cached value into dst. It reports false on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	ns := namespace(key)
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.WithLabelValues(ns).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// corrupt entry, treat as a miss and let the caller overwrite it
		metrics.CacheMisses.WithLabelValues(ns).Inc()
		return false, nil
	}
	metrics.CacheHits.WithLabelValues(ns).Inc()
	return true, nil
}

// SetJSON stores v under key. ttl <= 0 uses the cache default.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// DeletePattern removes every key matching pattern using SCAN so Redis is
// never blocked by KEYS.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	if c == nil || c.client == nil {
		return nil
	}
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// StatsKey is the cache key of one user's yearly stats row.
func StatsKey(userID string, year int) string {
	return fmt.Sprintf("stats:user:%s:year:%d", userID, year)
}

// StatsPattern matches every cached stats row of a user.
func StatsPattern(userID string) string {
	return fmt.Sprintf("stats:user:%s:*", userID)
}

// MetadataKey is the cache key of a metadata API response.
func MetadataKey(parts ...any) string {
	strs := make([]string, 0, len(parts)+1)
	strs = append(strs, "tmdb")
	for _, p := range parts {
		strs = append(strs, fmt.Sprint(p))
	}
	return strings.Join(strs, ":")
}

func namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
