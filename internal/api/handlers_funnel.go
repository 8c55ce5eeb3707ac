// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/invalidation"
	"github.com/tomtom215/northstar/internal/models"
)

// FunnelResponse is a funnel with its data-quality diagnostics.
type FunnelResponse struct {
	Funnel      analytics.Funnel             `json:"funnel"`
	Diagnostics []analytics.DiagnosticReport `json:"diagnostics"`
}

// FunnelComparisonResponse is a period comparison with the current
// period's diagnostics.
type FunnelComparisonResponse struct {
	database.FunnelComparison
	Diagnostics []analytics.DiagnosticReport `json:"diagnostics"`
}

// AnalyticsFunnel returns a named funnel, optionally compared with the
// previous period.
//
// @Summary Funnel
// @Description Stage counts are independent; a stage larger than its predecessor is reported as a funnel_monotonicity_violation diagnostic, not clamped.
// @Tags Funnels
// @Produce json
// @Param name path string true "session, plan_survival or activation"
// @Param compare query string false "previous to compare with the previous period"
// @Param period query string false "week (default) or month, used with compare"
// @Param start query string false "Start date (YYYY-MM-DD)"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param data_source query string false "Comma-separated data sources"
// @Param session_type query string false "Comma-separated session types (session funnels only)"
// @Param app_version query string false "Comma-separated app versions"
// @Success 200 {object} models.APIResponse{data=api.FunnelResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/funnels/{name} [get]
func (h *Handler) AnalyticsFunnel(w http.ResponseWriter, r *http.Request) {
	req := FunnelRequest{
		Name:    chi.URLParam(r, "name"),
		Compare: getStringParam(r, "compare", ""),
		Period:  getStringParam(r, "period", string(database.PeriodWeek)),
	}
	if req.Compare == "" {
		req.FilterParams = h.lookback(parseFilterParams(r))
	} else {
		req.FilterParams = parseFilterParams(r)
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	def, err := database.LookupFunnel(req.Name)
	if err != nil {
		respondErrorWithHint(w, http.StatusNotFound, &models.APIError{
			Code:    models.CodeNotFound,
			Message: "Unknown funnel " + strconv.Quote(req.Name),
			Details: map[string]interface{}{"known": database.FunnelNames()},
		}, nil)
		return
	}
	filter, apiErr := req.toFilter()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	executor := NewAnalyticsQueryExecutor(h)
	if req.Compare == "" {
		executor.Execute(w, r, invalidation.ScopeFunnel, req, filter, func(ctx context.Context) (interface{}, error) {
			funnel, err := h.db.Funnel(ctx, def, filter)
			if err != nil {
				return nil, err
			}
			return FunnelResponse{Funnel: funnel, Diagnostics: diagnosticReports(funnel.Err())}, nil
		})
		return
	}

	executor.Execute(w, r, invalidation.ScopeFunnel, req, filter, func(ctx context.Context) (interface{}, error) {
		cmp, err := h.db.CompareFunnelPeriods(ctx, def, filter, database.Period(req.Period))
		if err != nil {
			return nil, err
		}
		return FunnelComparisonResponse{FunnelComparison: cmp, Diagnostics: diagnosticReports(cmp.This.Err())}, nil
	})
}

// diagnosticReports never returns nil so clients always see a list.
func diagnosticReports(err error) []analytics.DiagnosticReport {
	reports := analytics.Reports(err)
	if reports == nil {
		return []analytics.DiagnosticReport{}
	}
	return reports
}
