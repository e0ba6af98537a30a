// Package cache provides a namespaced, TTL-expiring in-process cache
// standing in for the Redis deployment spec.md's open questions leave as
// an option: both production and development run this implementation,
// with a startup log warning in production that cache state does not
// survive a process restart or fan out across replicas (see DESIGN.md).
// The API shape (namespaced keys, TTL per entry, prefix invalidation)
// mirrors what a Redis-backed cache would expose, so swapping in a real
// client later only touches this package.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/clarity-health/claimrisk/internal/metrics"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Stats tracks cache effectiveness, surfaced on the health endpoint
// (spec.md §6 cache introspection).
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache is a namespaced, TTL-expiring in-process key/value store, safe
// for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	stats   Stats
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Set stores value under key with the given time-to-live. A zero or
// negative ttl means the entry never expires.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = entry{value: value, expiresAt: expiresAt}
}

// Get returns the value stored under key, and whether it was present and
// unexpired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		c.recordMiss()
		return nil, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	return e.value, true
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// DeletePrefix removes every key starting with prefix, e.g. "episode:{id}"
// invalidation after a status transition (spec.md §4.7).
func (c *Cache) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	metrics.CacheHitsTotal.WithLabelValues("default").Inc()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	metrics.CacheMissesTotal.WithLabelValues("default").Inc()
}

// Stats returns a snapshot of hit/miss counters.
func (c *Cache) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Len reports the current entry count, including not-yet-swept expired
// entries (useful for tests and /health reporting only).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ResetStats zeroes the hit/miss counters without evicting entries, for
// the operator-triggered cache admin endpoint (spec.md §6).
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = Stats{}
}
