// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/northstar/internal/invalidation"
	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/models"
)

// CacheStatsResponse is a point-in-time view of the result cache.
type CacheStatsResponse struct {
	Enabled       bool       `json:"enabled"`
	TTLSeconds    float64    `json:"ttl_seconds"`
	Entries       int64      `json:"entries"`
	Hits          int64      `json:"hits"`
	Misses        int64      `json:"misses"`
	HitRate       float64    `json:"hit_rate"`
	Evictions     int64      `json:"evictions"`
	Invalidations int64      `json:"invalidations"`
	LastCleared   *time.Time `json:"last_cleared,omitempty"`
}

// CacheRefresh clears every cached result and tells the other replicas to
// do the same.
//
// @Summary Manual refresh
// @Description Clears the result cache so the next request reads the warehouse. Limited to a few calls per minute across all clients.
// @Tags Cache
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.RefreshResponse}
// @Failure 429 {object} models.APIResponse
// @Router /cache/refresh [post]
func (h *Handler) CacheRefresh(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow() {
		w.Header().Set("Retry-After", "60")
		respondErrorWithHint(w, http.StatusTooManyRequests, &models.APIError{
			Code:    models.CodeRateLimited,
			Message: "Refresh limit reached",
			Hint:    "Cached results expire on their own within the cache TTL",
		}, nil)
		return
	}

	now := time.Now().UTC()
	requestID := logging.RequestIDFromContext(r.Context())

	cleared := 0
	if h.cache != nil {
		cleared = h.cache.Clear()
	}
	h.markRefreshed(now)

	broadcast := false
	if h.refresher != nil {
		err := h.refresher.Broadcast(r.Context(), invalidation.RefreshEvent{
			RefreshedAt: now,
			Source:      invalidation.SourceManual,
			RequestID:   requestID,
		})
		if err != nil {
			// The local cache is already clear; other replicas catch up at TTL.
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Refresh broadcast failed")
		} else {
			broadcast = true
		}
	}

	logging.Ctx(r.Context()).Info().
		Int("cleared", cleared).
		Bool("broadcast", broadcast).
		Msg("Result cache refreshed")

	respondSuccess(w, models.RefreshResponse{
		Cleared:   cleared,
		Broadcast: broadcast,
		RequestID: requestID,
		At:        now,
	}, models.Metadata{})
}

// CacheStats reports result cache statistics.
//
// @Summary Cache statistics
// @Tags Cache
// @Produce json
// @Success 200 {object} models.APIResponse{data=api.CacheStatsResponse}
// @Router /cache/stats [get]
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	resp := CacheStatsResponse{
		Enabled:    h.cache != nil,
		TTLSeconds: h.config.Cache.TTL.Seconds(),
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		resp.Entries = stats.TotalKeys
		resp.Hits = stats.Hits
		resp.Misses = stats.Misses
		resp.HitRate = h.cache.HitRate()
		resp.Evictions = stats.Evictions
		resp.Invalidations = stats.Invalidations
		if !stats.LastCleared.IsZero() {
			last := stats.LastCleared
			resp.LastCleared = &last
		}
	}
	respondSuccess(w, resp, models.Metadata{})
}
