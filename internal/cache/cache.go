// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/metrics"
)

// Entry represents a cached item with expiration
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory result cache. Keys are namespaced by
// scope (see GenerateKey) and expiry is decided by a pluggable Policy.
type Cache struct {
	name            string
	mu              sync.RWMutex
	entries         map[string]Entry
	policy          Policy
	now             func() time.Time
	cleanupInterval time.Duration
	stats           Stats
}

// Stats tracks cache performance metrics
type Stats struct {
	mu            sync.RWMutex
	Hits          int64     `json:"hits"`
	Misses        int64     `json:"misses"`
	Evictions     int64     `json:"evictions"`
	Invalidations int64     `json:"invalidations"`
	TotalKeys     int64     `json:"total_keys"`
	LastCleanup   time.Time `json:"last_cleanup"`
	LastCleared   time.Time `json:"last_cleared,omitempty"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithPolicy replaces the default TTL policy.
func WithPolicy(p Policy) Option {
	return func(c *Cache) { c.policy = p }
}

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithCleanupInterval sets how often Serve sweeps expired entries.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Cache) { c.cleanupInterval = d }
}

// WithName sets the cache_type label used for metrics and logs.
func WithName(name string) Option {
	return func(c *Cache) { c.name = name }
}

// New creates a cache whose entries live for ttl unless another policy is
// supplied. Expired entries are dropped lazily on Get; run Serve to also
// sweep them in the background.
//
//	c := cache.New(5*time.Minute, cache.WithName("analytics"))
//	tree.AddDataService(c)
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		name:            "analytics",
		entries:         make(map[string]Entry),
		policy:          TTLPolicy{TTL: ttl},
		now:             time.Now,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats.LastCleanup = c.now()
	return c
}

// Name returns the cache_type label.
func (c *Cache) Name() string {
	return c.name
}

// Get returns the cached value for key. Missing and expired keys are misses;
// an expired entry is removed and counted as an eviction. An entry refreshed
// by a concurrent Set between the expiry check and the removal is a hit.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.recordMiss()
		return nil, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		current, ok := c.entries[key]
		evicted := ok && !c.now().Before(current.ExpiresAt)
		if evicted {
			delete(c.entries, key)
		}
		size := len(c.entries)
		c.mu.Unlock()

		if ok && !evicted {
			c.recordHit()
			return current.Data, true
		}
		c.recordMiss()
		if evicted {
			c.recordEviction(1)
			c.updateSize(size)
		}
		return nil, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores value under key with the expiry chosen by the policy.
// Entries whose policy expiry is not in the future are not stored.
func (c *Cache) Set(key string, value interface{}) {
	now := c.now()
	expires := c.policy.ExpiresAt(key, now)
	if !expires.After(now) {
		return
	}
	c.store(key, value, expires)
}

func (c *Cache) store(key string, value interface{}, expires time.Time) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: expires}
	size := len(c.entries)
	c.mu.Unlock()
	c.updateSize(size)
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	if existed {
		c.recordInvalidation("key", 1)
	}
	c.updateSize(size)
}

// Clear removes every entry. This is the manual refresh path.
func (c *Cache) Clear() int {
	c.mu.Lock()
	removed := len(c.entries)
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.LastCleared = c.now()
	c.stats.mu.Unlock()

	c.recordInvalidation("manual", removed)
	c.updateSize(0)
	return removed
}

// InvalidateScope removes every entry whose key was generated for scope.
// It returns the number of entries removed.
func (c *Cache) InvalidateScope(scope string) int {
	prefix := scope + ":"

	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.recordInvalidation("scope", removed)
	c.updateSize(size)
	return removed
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache statistics.
func (c *Cache) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	c.mu.RLock()
	total := int64(len(c.entries))
	c.mu.RUnlock()

	return Stats{
		Hits:          c.stats.Hits,
		Misses:        c.stats.Misses,
		Evictions:     c.stats.Evictions,
		Invalidations: c.stats.Invalidations,
		TotalKeys:     total,
		LastCleanup:   c.stats.LastCleanup,
		LastCleared:   c.stats.LastCleared,
	}
}

// HitRate returns the hit rate as a percentage, 0 before any lookup.
func (c *Cache) HitRate() float64 {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	total := c.stats.Hits + c.stats.Misses
	if total == 0 {
		return 0
	}
	return float64(c.stats.Hits) / float64(total) * 100
}

// Serve sweeps expired entries until ctx is canceled.
// It implements suture.Service.
func (c *Cache) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := c.cleanup(); removed > 0 {
				logging.Debug().Str("cache", c.name).Int("removed", removed).Msg("Swept expired cache entries")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (c *Cache) String() string {
	return "cache-janitor:" + c.name
}

// cleanup removes expired entries and returns how many were removed.
func (c *Cache) cleanup() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.stats.mu.Lock()
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()

	c.recordEviction(removed)
	c.updateSize(size)
	return removed
}

func (c *Cache) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.CacheHits.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.CacheMisses.WithLabelValues(c.name).Inc()
}

func (c *Cache) recordEviction(n int) {
	if n == 0 {
		return
	}
	c.stats.mu.Lock()
	c.stats.Evictions += int64(n)
	c.stats.mu.Unlock()
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

func (c *Cache) recordInvalidation(reason string, n int) {
	c.stats.mu.Lock()
	c.stats.Invalidations += int64(n)
	c.stats.mu.Unlock()
	metrics.CacheInvalidations.WithLabelValues(c.name, reason).Inc()
}

func (c *Cache) updateSize(n int) {
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(n))
}

// GenerateKey builds a cache key from a scope and the query arguments.
// Identical arguments always produce the same key; the scope prefix is kept
// readable so InvalidateScope can target it.
func GenerateKey(scope string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", scope, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", scope, hash[:16])
}

// ScopeOf returns the scope portion of a key produced by GenerateKey.
func ScopeOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
