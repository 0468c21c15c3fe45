package memory

import (
	"context"
	"sync"
	"time"

	"stayquote/internal/app/dto"
	"stayquote/internal/app/policies"
	"stayquote/internal/domain/shared/daterange"
)

// AvailabilityCache is a process-local policies.AvailabilityCache with a fixed TTL.
type AvailabilityCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	value   dto.Availability
	expires time.Time
}

func NewAvailabilityCache(ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{entries: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

func (c *AvailabilityCache) Get(ctx context.Context, window daterange.DateRange) (dto.Availability, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[window.String()]
	if !ok || (!e.expires.IsZero() && c.now().After(e.expires)) {
		return dto.Availability{}, policies.ErrCacheMiss
	}
	return e.value, nil
}

func (c *AvailabilityCache) Set(ctx context.Context, window daterange.DateRange, value dto.Availability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := cacheEntry{value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	c.entries[window.String()] = e
	return nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	return nil
}

var _ policies.AvailabilityCache = (*AvailabilityCache)(nil)
