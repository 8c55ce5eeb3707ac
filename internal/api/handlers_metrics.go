// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/invalidation"
	"github.com/tomtom215/northstar/internal/models"
)

// AnalyticsRate returns one metric over the filtered sessions, or a series
// when bucket is given.
//
// @Summary Metric rate or series
// @Description Aggregates a named rate (ssr, scr3, share_rate, psr_broad, psr_strict, no_value_rate, genuine_planning_rate, planning_save_rate). A rate whose denominator is zero is null, never 0.
// @Tags Metrics
// @Produce json
// @Param metric query string true "Metric name"
// @Param bucket query string false "Series bucket (day, week, month)"
// @Param start query string false "Start date (YYYY-MM-DD), defaults to the lookback window"
// @Param end query string false "End date (YYYY-MM-DD)"
// @Param data_source query string false "Comma-separated data sources"
// @Param session_type query string false "Comma-separated session types"
// @Param app_version query string false "Comma-separated app versions"
// @Success 200 {object} models.APIResponse{data=database.RateResult}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/rate [get]
func (h *Handler) AnalyticsRate(w http.ResponseWriter, r *http.Request) {
	req := RateRequest{
		Metric:       getStringParam(r, "metric", ""),
		Bucket:       getStringParam(r, "bucket", ""),
		FilterParams: h.lookback(parseFilterParams(r)),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	filter, apiErr := req.toFilter()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	metric, err := database.LookupMetric(req.Metric)
	if err != nil {
		respondQueryError(w, r, "rate", err, models.Metadata{})
		return
	}

	executor := NewAnalyticsQueryExecutor(h)
	if req.Bucket == "" {
		executor.Execute(w, r, invalidation.ScopeRate, req, filter, func(ctx context.Context) (interface{}, error) {
			return h.db.AggregateRate(ctx, metric, filter)
		})
		return
	}
	executor.Execute(w, r, invalidation.ScopeSeries, req, filter, func(ctx context.Context) (interface{}, error) {
		return h.db.RateSeries(ctx, metric, filter, database.Bucket(req.Bucket))
	})
}

// AnalyticsNorthStar returns the North Star metrics against the previous period.
//
// @Summary North Star summary
// @Description Each North Star metric for the trailing week or month against the window before it. Deltas are null unless both windows have a defined rate.
// @Tags Metrics
// @Produce json
// @Param period query string false "week (default) or month"
// @Param data_source query string false "Comma-separated data sources"
// @Param session_type query string false "Comma-separated session types"
// @Param app_version query string false "Comma-separated app versions"
// @Success 200 {object} models.APIResponse{data=database.NorthStarSummary}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/north-star [get]
func (h *Handler) AnalyticsNorthStar(w http.ResponseWriter, r *http.Request) {
	req := PeriodRequest{
		Period:       getStringParam(r, "period", string(database.PeriodWeek)),
		FilterParams: parseFilterParams(r),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	filter, apiErr := req.toFilter()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	NewAnalyticsQueryExecutor(h).Execute(w, r, invalidation.ScopeNorthStar, req, filter,
		func(ctx context.Context) (interface{}, error) {
			return h.db.NorthStarSummary(ctx, filter, database.Period(req.Period))
		})
}

// Catalog lists the metrics, funnels and horizons clients may request.
type Catalog struct {
	Metrics          []string `json:"metrics"`
	NorthStarMetrics []string `json:"north_star_metrics"`
	Funnels          []string `json:"funnels"`
	Horizons         []string `json:"horizons"`
	Dimensions       []string `json:"dimensions"`
}

// AnalyticsCatalog describes what the analytics endpoints accept.
//
// @Summary Analytics catalog
// @Tags Metrics
// @Produce json
// @Success 200 {object} models.APIResponse{data=api.Catalog}
// @Router /analytics/catalog [get]
func (h *Handler) AnalyticsCatalog(w http.ResponseWriter, r *http.Request) {
	horizons := make([]string, 0, len(analytics.DayHorizons)+len(analytics.MonthHorizons))
	for _, hz := range analytics.DayHorizons {
		horizons = append(horizons, hz.String())
	}
	for _, hz := range analytics.MonthHorizons {
		horizons = append(horizons, hz.String())
	}
	dims := make([]string, len(database.Dimensions))
	for i, d := range database.Dimensions {
		dims[i] = string(d)
	}

	respondSuccess(w, Catalog{
		Metrics:          database.MetricNames(),
		NorthStarMetrics: database.NorthStarMetrics,
		Funnels:          database.FunnelNames(),
		Horizons:         horizons,
		Dimensions:       dims,
	}, models.Metadata{})
}

// lookback applies the configured default date range to p.
func (h *Handler) lookback(p FilterParams) FilterParams {
	return p.withDefaultLookback(h.config.Analytics.DefaultLookbackDays, h.today())
}
