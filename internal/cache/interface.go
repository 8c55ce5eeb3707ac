// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package cache

// Cacher is the read-through surface the API layer depends on.
type Cacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	GetStats() Stats
	HitRate() float64
	Invalidator
}

// Invalidator drops cached results when the warehouse changes.
type Invalidator interface {
	// Clear removes every entry and returns how many were removed.
	Clear() int
	// InvalidateScope removes the entries of one query scope.
	InvalidateScope(scope string) int
}

var _ Cacher = (*Cache)(nil)
