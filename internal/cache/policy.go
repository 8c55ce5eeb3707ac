// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package cache

import "time"

// Policy decides how long an entry stays valid.
type Policy interface {
	// ExpiresAt returns the instant after which the entry stored under key
	// at now must no longer be served. A value not after now means "do not cache".
	ExpiresAt(key string, now time.Time) time.Time
}

// TTLPolicy expires every entry a fixed duration after it was stored.
type TTLPolicy struct {
	TTL time.Duration
}

// ExpiresAt implements Policy.
func (p TTLPolicy) ExpiresAt(_ string, now time.Time) time.Time {
	return now.Add(p.TTL)
}

// ScopedTTLPolicy applies a per-scope TTL, falling back to Default.
// A zero TTL for a scope disables caching for it.
type ScopedTTLPolicy struct {
	Default time.Duration
	Scopes  map[string]time.Duration
}

// ExpiresAt implements Policy.
func (p ScopedTTLPolicy) ExpiresAt(key string, now time.Time) time.Time {
	if ttl, ok := p.Scopes[ScopeOf(key)]; ok {
		return now.Add(ttl)
	}
	return now.Add(p.Default)
}
