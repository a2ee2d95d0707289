package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// InvalidateSubject carries a cache key to drop, or "ALL" to flush.
const InvalidateSubject = "poetry.cache.invalidate"

type memoryItem struct {
	val       string
	expiresAt time.Time
}

// MemoryCache is an in-process Store with per-entry expiry and optional NATS
// invalidation. It backs the service when no Redis is configured.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
	sub   *nats.Subscription
}

// NewMemoryCache subscribes to subj for invalidations when nc is non-nil.
func NewMemoryCache(ttl time.Duration, nc *nats.Conn, subj string) (*MemoryCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &MemoryCache{
		items: make(map[string]memoryItem),
		ttl:   ttl,
		now:   time.Now,
	}
	if nc != nil && subj != "" {
		sub, err := nc.Subscribe(subj, func(m *nats.Msg) { c.Invalidate(string(m.Data)) })
		if err != nil {
			return nil, err
		}
		c.sub = sub
	}
	return c, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if c.now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[key]; ok2 && c.now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return "", false, nil
	}
	return it.val, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	c.items[key] = memoryItem{val: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Invalidate drops key, or every entry when key is empty or "ALL".
func (c *MemoryCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == "" || strings.EqualFold(key, "ALL") {
		c.items = make(map[string]memoryItem)
		return
	}
	delete(c.items, key)
}

func (c *MemoryCache) Close() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Unsubscribe()
}
