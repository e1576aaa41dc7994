package imaging

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache stores fetched image bytes keyed by URL digest.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error) // val, found, err
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedTransport serves repeated URLs from a Cache. Cache failures are
// logged and fall through to Next.
type CachedTransport struct {
	Next   Transport
	Cache  Cache
	TTL    time.Duration
	Logger logrus.FieldLogger
}

// CacheKey returns the cache key for an image URL.
func CacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "orderpdf:img:" + hex.EncodeToString(sum[:])
}

func (t *CachedTransport) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	key := CacheKey(rawURL)
	data, found, err := t.Cache.Get(ctx, key)
	if err != nil {
		t.logger().WithError(err).Warn("image cache read failed")
	} else if found {
		return data, nil
	}

	data, err = t.Next.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if err := t.Cache.Set(ctx, key, data, t.TTL); err != nil {
		t.logger().WithError(err).Warn("image cache write failed")
	}
	return data, nil
}

func (t *CachedTransport) logger() logrus.FieldLogger {
	if t.Logger == nil {
		return logrus.StandardLogger()
	}
	return t.Logger
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.data, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{data: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
