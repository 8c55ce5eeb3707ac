// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCacheBasicOperations(t *testing.T) {
	c := New(1*time.Minute, WithName("test_basic"))

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Fatal("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	clock := newFakeClock()
	c := New(5*time.Minute, WithClock(clock.Now), WithName("test_expiry"))

	c.Set("funnel:abc", 42)

	clock.Advance(4*time.Minute + 59*time.Second)
	if _, ok := c.Get("funnel:abc"); !ok {
		t.Fatal("entry expired before TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("funnel:abc"); ok {
		t.Fatal("entry still served at TTL boundary")
	}

	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.TotalKeys != 0 {
		t.Errorf("TotalKeys = %d, want 0", stats.TotalKeys)
	}
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute, WithName("test_clear"))
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("rate:%d", i), i)
	}

	if removed := c.Clear(); removed != 5 {
		t.Errorf("Clear() = %d, want 5", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
	stats := c.GetStats()
	if stats.Invalidations != 5 {
		t.Errorf("Invalidations = %d, want 5", stats.Invalidations)
	}
	if stats.LastCleared.IsZero() {
		t.Error("LastCleared not recorded")
	}
}

func TestCacheInvalidateScope(t *testing.T) {
	c := New(time.Minute, WithName("test_scope"))
	c.Set(GenerateKey("funnel", map[string]string{"name": "session"}), 1)
	c.Set(GenerateKey("funnel", map[string]string{"name": "activation"}), 2)
	c.Set(GenerateKey("retention", map[string]string{"anchor": "signup"}), 3)
	c.Set(GenerateKey("funnel_compare", map[string]string{"name": "session"}), 4)

	if removed := c.InvalidateScope("funnel"); removed != 2 {
		t.Errorf("InvalidateScope(funnel) = %d, want 2", removed)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (retention and funnel_compare survive)", c.Len())
	}
	if _, ok := c.Get(GenerateKey("funnel_compare", map[string]string{"name": "session"})); !ok {
		t.Error("scope prefix matching removed a different scope")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute, WithName("test_delete"))
	c.Set("k", "v")
	c.Delete("k")
	c.Delete("missing")

	if _, ok := c.Get("k"); ok {
		t.Error("deleted key still present")
	}
	if got := c.GetStats().Invalidations; got != 1 {
		t.Errorf("Invalidations = %d, want 1", got)
	}
}

func TestCacheHitRate(t *testing.T) {
	c := New(time.Minute, WithName("test_hitrate"))
	if c.HitRate() != 0 {
		t.Errorf("HitRate() with no lookups = %v, want 0", c.HitRate())
	}

	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("b")

	if got := c.HitRate(); got != 75 {
		t.Errorf("HitRate() = %v, want 75", got)
	}
}

func TestGetExpiredEntryRefreshedConcurrently(t *testing.T) {
	clock := newFakeClock()
	var c *Cache
	armed, refreshing := false, false
	// The hook stands in for a Set that lands between Get's expiry check
	// and its write-locked re-check.
	now := func() time.Time {
		if armed && !refreshing {
			armed, refreshing = false, true
			c.Set("k", "fresh")
			refreshing = false
		}
		return clock.Now()
	}
	c = New(time.Minute, WithClock(now), WithName("test_refresh_race"))

	c.Set("k", "stale")
	clock.Advance(2 * time.Minute)
	armed = true

	value, ok := c.Get("k")
	if !ok || value != "fresh" {
		t.Fatalf("Get() = %v, %v, want the refreshed entry", value, ok)
	}
	stats := c.GetStats()
	if stats.Evictions != 0 {
		t.Errorf("evictions = %d, want 0 for a refreshed entry", stats.Evictions)
	}
	if stats.Hits != 1 || stats.Misses != 0 {
		t.Errorf("hits/misses = %d/%d, want 1/0", stats.Hits, stats.Misses)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestGetExpiredEntryEvictedOnce(t *testing.T) {
	clock := newFakeClock()
	c := New(time.Minute, WithClock(clock.Now), WithName("test_evict_once"))

	c.Set("k", 1)
	clock.Advance(2 * time.Minute)
	for i := 0; i < 3; i++ {
		if _, ok := c.Get("k"); ok {
			t.Fatal("expired entry served")
		}
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("evictions = %d, want 1", got)
	}
}

func TestScopedTTLPolicy(t *testing.T) {
	clock := newFakeClock()
	policy := ScopedTTLPolicy{
		Default: 5 * time.Minute,
		Scopes: map[string]time.Duration{
			"engagement": time.Minute,
			"health":     0,
		},
	}
	c := New(0, WithPolicy(policy), WithClock(clock.Now), WithName("test_scoped"))

	c.Set("engagement:1", "dau")
	c.Set("funnel:1", "funnel")
	c.Set("health:1", "ok")

	if _, ok := c.Get("health:1"); ok {
		t.Error("scope with zero TTL should not be cached")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("engagement:1"); ok {
		t.Error("engagement entry outlived its scope TTL")
	}
	if _, ok := c.Get("funnel:1"); !ok {
		t.Error("funnel entry expired before default TTL")
	}
}

func TestCleanup(t *testing.T) {
	clock := newFakeClock()
	c := New(time.Minute, WithClock(clock.Now), WithName("test_cleanup"))

	c.Set("old", 1)
	clock.Advance(30 * time.Second)
	c.Set("new", 2)
	clock.Advance(45 * time.Second)

	if removed := c.cleanup(); removed != 1 {
		t.Errorf("cleanup() = %d, want 1", removed)
	}
	if _, ok := c.Get("new"); !ok {
		t.Error("unexpired entry removed by cleanup")
	}
	if got := c.GetStats().LastCleanup; !got.Equal(clock.Now()) {
		t.Errorf("LastCleanup = %v, want %v", got, clock.Now())
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	c := New(time.Millisecond, WithCleanupInterval(5*time.Millisecond), WithName("test_serve"))
	c.Set("a", 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for c.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("janitor never swept the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if !strings.HasPrefix(c.String(), "cache-janitor:") {
		t.Errorf("String() = %q", c.String())
	}
}

func TestGenerateKey(t *testing.T) {
	type args struct {
		Metric string   `json:"metric"`
		Values []string `json:"values"`
	}

	k1 := GenerateKey("rate", args{Metric: "ssr", Values: []string{"native"}})
	k2 := GenerateKey("rate", args{Metric: "ssr", Values: []string{"native"}})
	k3 := GenerateKey("rate", args{Metric: "scr3", Values: []string{"native"}})
	k4 := GenerateKey("funnel", args{Metric: "ssr", Values: []string{"native"}})

	if k1 != k2 {
		t.Errorf("identical arguments produced different keys: %s vs %s", k1, k2)
	}
	if k1 == k3 {
		t.Error("different arguments produced the same key")
	}
	if k1 == k4 {
		t.Error("different scopes produced the same key")
	}
	if ScopeOf(k1) != "rate" {
		t.Errorf("ScopeOf(%s) = %q, want rate", k1, ScopeOf(k1))
	}
	// scope + ":" + 32 hex characters
	if len(k1) != len("rate:")+32 {
		t.Errorf("unexpected key length %d for %s", len(k1), k1)
	}
}

func TestGenerateKeyUnmarshalable(t *testing.T) {
	key := GenerateKey("TestScope", struct{ Ch chan int }{Ch: make(chan int)})
	if !strings.HasPrefix(key, "TestScope:") {
		t.Errorf("Expected key to keep the scope prefix, got: %s", key)
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New(time.Minute, WithName("test_concurrency"))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := GenerateKey("rate", []int{g, i % 10})
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.InvalidateScope("rate")
				}
			}
		}(g)
	}
	wg.Wait()

	stats := c.GetStats()
	if stats.Hits+stats.Misses != 8*200 {
		t.Errorf("lookups = %d, want %d", stats.Hits+stats.Misses, 8*200)
	}
}
