package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/autismart/autismart/internal/assessment"
)

// Cache stores generated insights by report fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (*Insight, bool, error)
	Set(ctx context.Context, key string, in *Insight) error
}

// Fingerprint identifies a report by its scores. Reports with identical
// answers map to the same key regardless of who they belong to.
func Fingerprint(r *assessment.Report) string {
	payload, _ := json.Marshal(struct {
		Result assessment.ScoreResult  `json:"result"`
		Level  assessment.SupportLevel `json:"level"`
	}{r.Result, r.Level})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*Insight
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]*Insight)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Insight, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in, ok := c.items[key]
	return in, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, in *Insight) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = in
	return nil
}

// RedisKeyPrefix namespaces insight keys.
const RedisKeyPrefix = "autismart:insight:"

// RedisCache stores insights as JSON strings with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the server at url (redis://host:port/db) and
// checks it responds.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Insight, bool, error) {
	data, err := c.client.Get(ctx, RedisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached insight: %w", err)
	}

	var in Insight
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, false, fmt.Errorf("decode cached insight: %w", err)
	}
	return &in, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, in *Insight) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode insight: %w", err)
	}
	if err := c.client.Set(ctx, RedisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache insight: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
