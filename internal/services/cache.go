package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL is used for analytics and book-list responses
	DefaultCacheTTL = 10 * time.Minute
	// MaxCacheTTL caps caller-supplied TTLs
	MaxCacheTTL = time.Hour
)

// CacheService caches expensive query results (analytics aggregations,
// popular-book lists) in Redis.
type CacheService struct{}

// Get retrieves a value from cache. A miss is not an error. When Redis is
// not connected every lookup is a miss.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil // cache miss
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a value in cache with the default TTL.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value in cache with a custom TTL (capped at one hour).
func (c *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if database.RedisClient == nil {
		return nil
	}
	if ttl <= 0 || ttl > MaxCacheTTL {
		ttl = DefaultCacheTTL
	}
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return database.RedisClient.Set(ctx, CacheKeyPrefix+key, jsonData, ttl).Err()
}

// Delete removes a value from cache.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	if database.RedisClient == nil {
		return nil
	}
	return database.RedisClient.Del(ctx, CacheKeyPrefix+key).Err()
}

// CacheKey generates a cache key for a specific resource.
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}

// Cache is the global cache service instance.
var Cache = &CacheService{}
