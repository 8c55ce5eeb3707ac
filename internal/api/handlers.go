// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/northstar/internal/cache"
	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/invalidation"
)

// RefreshBroadcaster announces a manual refresh to the other replicas.
type RefreshBroadcaster interface {
	Broadcast(ctx context.Context, ev invalidation.RefreshEvent) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response writing and parameter parsing
//   - handlers_health.go: health and probe endpoints
//   - handlers_metrics.go: rate, series and North Star endpoints
//   - handlers_funnel.go: funnel endpoints
//   - handlers_retention.go: heatmap, curves and ranking endpoints
//   - handlers_users.go: activation and engagement endpoints
//   - handlers_cache.go: manual refresh and cache statistics
type Handler struct {
	db        *database.DB
	cache     cache.Cacher
	config    *config.Config
	refresher RefreshBroadcaster
	limiter   *rate.Limiter
	version   string
	startTime time.Time
	now       func() time.Time

	// invalidationStatus reports the refresh subscriber state for /health.
	invalidationStatus func() string

	mu          sync.RWMutex
	lastRefresh time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithRefreshBroadcaster fans manual refreshes out to other replicas.
func WithRefreshBroadcaster(b RefreshBroadcaster) HandlerOption {
	return func(h *Handler) { h.refresher = b }
}

// WithInvalidationStatus reports the refresh subscriber state on /health.
func WithInvalidationStatus(fn func() string) HandlerOption {
	return func(h *Handler) { h.invalidationStatus = fn }
}

// WithClock sets the time source for default date windows. It should match
// the warehouse clock.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) { h.now = now }
}

// WithVersion sets the version reported on /health.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates the API handler. c may be nil to disable result
// caching.
//
// Example:
//
//	handler := api.NewHandler(db, resultCache, cfg, api.WithVersion(version))
//	router := api.NewRouter(handler, cfg)
//	http.ListenAndServe(":3857", router.SetupChi())
func NewHandler(db *database.DB, c cache.Cacher, cfg *config.Config, opts ...HandlerOption) *Handler {
	perMinute := cfg.Security.RefreshPerMinute
	if perMinute <= 0 {
		perMinute = 1
	}

	h := &Handler{
		db:        db,
		cache:     c,
		config:    cfg,
		version:   "dev",
		startTime: time.Now(),
		now:       time.Now,
		// One refresh token accrues every minute/perMinute; a full minute's
		// worth may be spent at once.
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) markRefreshed(at time.Time) {
	h.mu.Lock()
	h.lastRefresh = at
	h.mu.Unlock()
}

// LastRefresh returns when the cache was last cleared manually, zero if never.
func (h *Handler) LastRefresh() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastRefresh
}

// today is the current UTC calendar day.
func (h *Handler) today() time.Time {
	t := h.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
