// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/middleware"
	"github.com/tomtom215/northstar/internal/models"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for h using the security settings in cfg.
func NewRouter(h *Handler, cfg *config.Config) *Router {
	return &Router{
		handler:       h,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(cfg.Security)),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)          // X-Request-ID plus logging context
	r.Use(router.chiMiddleware.RealIP()) // Forwarding headers from trusted proxies only
	r.Use(middleware.AccessLog)          // Outside Recoverer so panics log as 500
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, models.CodeNotFound, "No such endpoint", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Analytics Endpoints
	// ========================
	// Read-only and cached; permissive limits keep dashboard loads smooth.
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAnalytics())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/catalog", router.handler.AnalyticsCatalog)
		r.Get("/rate", router.handler.AnalyticsRate)
		r.Get("/north-star", router.handler.AnalyticsNorthStar)
		r.Get("/funnels/{name}", router.handler.AnalyticsFunnel)
		r.Route("/retention", func(r chi.Router) {
			r.Get("/heatmap", router.handler.AnalyticsRetentionHeatmap)
			r.Get("/curves", router.handler.AnalyticsRetentionCurves)
			r.Get("/ranking", router.handler.AnalyticsRetentionRanking)
		})
		r.Get("/activation", router.handler.AnalyticsActivation)
		r.Get("/engagement", router.handler.AnalyticsEngagement)
	})

	// ========================
	// Cache Endpoints
	// ========================
	r.Route("/api/v1/cache", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMiddleware.RateLimitRefresh()).Post("/refresh", router.handler.CacheRefresh)
		r.Get("/stats", router.handler.CacheStats)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
