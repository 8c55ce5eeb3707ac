// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package cache provides the query result cache used by the analytics API.

Keys are built with GenerateKey(scope, params): the scope names the query
(for example "funnel" or "retention") and params are the query arguments,
hashed after JSON encoding. Identical (scope, arguments) pairs always map to
the same key, so repeated requests are served from memory until the entry
expires.

Expiry is delegated to a Policy. TTLPolicy (5 minutes by default) mirrors a
plain TTL cache; ScopedTTLPolicy sets different lifetimes per scope.

Invalidation:
  - Clear drops everything (manual refresh)
  - InvalidateScope drops one query family (warehouse refresh events)
  - Delete drops a single key

Only successful results belong in the cache. Callers must never store an
error so that a failed query is retried by the next request, not replayed.

Serve runs the background sweep and is meant to be supervised:

	c := cache.New(5*time.Minute, cache.WithCleanupInterval(time.Minute))
	tree.AddDataService(c)
*/
package cache
