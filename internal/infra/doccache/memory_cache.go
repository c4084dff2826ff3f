package doccache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/activity-for-you/internal/domain/activity"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryCache keeps documents in process memory until their TTL lapses.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements activity.DocumentCache.
func (c *MemoryCache) Get(_ context.Context, city string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[city]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.expired(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, city)
		c.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, true, nil
}

// Set stores a copy of payload. A non-positive ttl is ignored; documents are never cached indefinitely.
func (c *MemoryCache) Set(_ context.Context, city string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[city] = entry{payload: stored, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemoryCache) expired(ts time.Time) bool {
	return !ts.After(c.now())
}

var _ activity.DocumentCache = (*MemoryCache)(nil)
