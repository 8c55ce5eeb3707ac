// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package invalidation

import (
	"sort"
	"strings"

	"github.com/tomtom215/northstar/internal/cache"
)

// Cache scopes used by the API when generating keys.
const (
	ScopeRate       = "rate"
	ScopeSeries     = "series"
	ScopeNorthStar  = "north_star"
	ScopeFunnel     = "funnel"
	ScopeRetention  = "retention"
	ScopeActivation = "activation"
	ScopeEngagement = "engagement"
)

// tableScopes lists the scopes whose queries read each gold table.
var tableScopes = map[string][]string{
	"session_outcomes": {
		ScopeRate, ScopeSeries, ScopeNorthStar, ScopeFunnel, ScopeRetention, ScopeEngagement,
	},
	"user_activations": {
		ScopeFunnel, ScopeRetention, ScopeActivation,
	},
}

// ScopesFor returns the scopes affected by a refresh of tables. all is true
// when the whole cache must be cleared: an empty list, or any table this
// service does not know about.
func ScopesFor(tables []string) (scopes []string, all bool) {
	if len(tables) == 0 {
		return nil, true
	}

	seen := make(map[string]struct{})
	for _, t := range tables {
		name := strings.ToLower(strings.TrimSpace(t))
		name = strings.TrimPrefix(name, "gold.")
		affected, ok := tableScopes[name]
		if !ok {
			return nil, true
		}
		for _, s := range affected {
			seen[s] = struct{}{}
		}
	}

	scopes = make([]string, 0, len(seen))
	for s := range seen {
		scopes = append(scopes, s)
	}
	sort.Strings(scopes)
	return scopes, false
}

// Apply drops the cache entries invalidated by ev and returns how many
// entries were removed.
func Apply(inv cache.Invalidator, ev *RefreshEvent) int {
	scopes, all := ScopesFor(ev.Tables)
	if all {
		return inv.Clear()
	}
	removed := 0
	for _, s := range scopes {
		removed += inv.InvalidateScope(s)
	}
	return removed
}
