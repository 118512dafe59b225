// internal/adapter/cache/ttl.go

package cache

import (
	"context"
	"sync"
	"time"

	"trendwise/internal/domain/trend"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is an in-memory keyed cache whose entries expire after a fixed TTL
type TTLCache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

// NewTTLCache creates a cache reading time from now. A nil now uses time.Now.
func NewTTLCache[V any](ttl time.Duration, now func() time.Time) *TTLCache[V] {
	if now == nil {
		now = time.Now
	}
	return &TTLCache[V]{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the live value stored under key
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Delete removes key
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired ones included
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

const trendsKey = "trends"

// MemoryTrendCache keeps the aggregated list in process memory
type MemoryTrendCache struct {
	c *TTLCache[[]trend.Trend]
}

// NewMemoryTrendCache creates an in-memory trend cache
func NewMemoryTrendCache(ttl time.Duration, now func() time.Time) *MemoryTrendCache {
	return &MemoryTrendCache{c: NewTTLCache[[]trend.Trend](ttl, now)}
}

// Get returns the cached list
func (m *MemoryTrendCache) Get(ctx context.Context) ([]trend.Trend, bool) {
	trends, ok := m.c.Get(trendsKey)
	if !ok {
		return nil, false
	}
	out := make([]trend.Trend, len(trends))
	copy(out, trends)
	return out, true
}

// Set replaces the cached list
func (m *MemoryTrendCache) Set(ctx context.Context, trends []trend.Trend) {
	stored := make([]trend.Trend, len(trends))
	copy(stored, trends)
	m.c.Set(trendsKey, stored)
}
