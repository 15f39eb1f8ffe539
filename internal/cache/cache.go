package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

// ErrLockBusy is returned when a lock is still held after every attempt
var ErrLockBusy = errors.New("lock is held by another request")

const (
	lockAttempts = 10
	lockRetry    = 25 * time.Millisecond
)

// releaseScript deletes a lock only if it still carries the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Channel Stats Cache Operations

func statsKey(channelID string) string {
	return fmt.Sprintf("stats:channel:%s", channelID)
}

// SetChannelStats caches the dashboard totals of a channel
func (c *Cache) SetChannelStats(ctx context.Context, channelID string, stats *models.ChannelStats, ttl time.Duration) error {
	return c.SetWithJSON(ctx, statsKey(channelID), stats, ttl)
}

// GetChannelStats returns cached dashboard totals, or nil on a miss
func (c *Cache) GetChannelStats(ctx context.Context, channelID string) (*models.ChannelStats, error) {
	var stats models.ChannelStats
	hit, err := c.GetWithJSON(ctx, statsKey(channelID), &stats)
	if err != nil {
		return nil, err
	}
	metrics.RecordCacheAccess("channel_stats", hit)
	if !hit {
		return nil, nil // Cache miss
	}
	return &stats, nil
}

// InvalidateChannelStats drops the cached totals of a channel
func (c *Cache) InvalidateChannelStats(ctx context.Context, channelID string) error {
	return c.client.Del(ctx, statsKey(channelID)).Err()
}

// Rate Limiting Operations

// CheckRateLimit increments the counter of key and reports whether it is
// still within limit for the current window
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	rateLimitKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := c.client.Incr(ctx, rateLimitKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := c.client.Expire(ctx, rateLimitKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	return count <= limit, nil
}

// ResetRateLimit clears the counter of key
func (c *Cache) ResetRateLimit(ctx context.Context, key string) error {
	return c.client.Del(ctx, fmt.Sprintf("ratelimit:%s", key)).Err()
}

// Locking Operations

func lockKey(resource string) string {
	return fmt.Sprintf("lock:%s", resource)
}

// AcquireLock attempts once to acquire a lock and returns its token
func (c *Cache) AcquireLock(ctx context.Context, resource string, ttl time.Duration) (string, bool, error) {
	token := uuid.New().String()
	ok, err := c.client.SetNX(ctx, lockKey(resource), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", resource, err)
	}
	return token, ok, nil
}

// ReleaseLock releases a lock if token still owns it
func (c *Cache) ReleaseLock(ctx context.Context, resource, token string) error {
	if err := releaseScript.Run(ctx, c.client, []string{lockKey(resource)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", resource, err)
	}
	return nil
}

// WithLock runs fn while holding the lock on resource, retrying acquisition
// briefly. The lock expires after ttl even if the holder dies.
func (c *Cache) WithLock(ctx context.Context, resource string, ttl time.Duration, fn func() error) error {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		token, ok, err := c.AcquireLock(ctx, resource, ttl)
		if err != nil {
			return err
		}
		if ok {
			defer func() {
				// Release with a fresh context so a cancelled request still unlocks
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = c.ReleaseLock(releaseCtx, resource, token)
			}()
			return fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetry):
		}
	}
	return fmt.Errorf("%s: %w", resource, ErrLockBusy)
}

// Generic Operations

// SetWithJSON sets a value with JSON marshaling
func (c *Cache) SetWithJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetWithJSON gets a value with JSON unmarshaling and reports whether the
// key was present
func (c *Cache) GetWithJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get value from cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal value: %w", err)
	}

	return true, nil
}

// Exists checks if a key exists
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	result, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}
