// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/northstar/internal/models"
)

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns warehouse connectivity, breaker state, refresh subscriber state, row counts, uptime and the last manual refresh.
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthResponse{
		Status:       "healthy",
		Version:      h.version,
		Warehouse:    "disconnected",
		Breaker:      "unknown",
		Invalidation: "disabled",
		Uptime:       time.Since(h.startTime).Seconds(),
	}

	if h.db != nil {
		health.Breaker = h.db.BreakerState()
		if h.db.Ping(r.Context()) == nil {
			health.Warehouse = "connected"
			// Counts are informational; a failure here does not degrade health.
			if sessions, users, err := h.db.GetRecordCounts(r.Context()); err == nil {
				health.Sessions = sessions
				health.Users = users
			}
		}
	}
	if health.Warehouse != "connected" {
		health.Status = "degraded"
	}
	if h.invalidationStatus != nil {
		health.Invalidation = h.invalidationStatus()
	}
	if last := h.LastRefresh(); !last.IsZero() {
		health.LastRefreshAt = &last
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the warehouse answers a ping
//
// @Summary Kubernetes readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse "Service is ready"
// @Failure 503 {object} models.APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.db != nil && h.db.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"warehouse_connected": ready,
			"ready_to_serve":      ready,
			"uptime":              time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
