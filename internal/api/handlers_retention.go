// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/invalidation"
	"github.com/tomtom215/northstar/internal/models"
)

// RetentionSettings echoes the resolved cohort parameters.
type RetentionSettings struct {
	Anchor      database.Anchor          `json:"anchor"`
	Granularity analytics.Granularity    `json:"granularity"`
	Event       database.QualifyingEvent `json:"event"`
	Horizons    []analytics.Horizon      `json:"horizons"`
	MinSample   int                      `json:"min_sample"`
}

// PooledCell is the retention of all listed cohorts together at one horizon.
type PooledCell struct {
	Horizon analytics.Horizon `json:"horizon"`
	Rate    analytics.Rate    `json:"rate"`
}

// HeatmapResponse is the cohort-by-horizon retention grid, newest cohort first.
type HeatmapResponse struct {
	Settings    RetentionSettings            `json:"settings"`
	Rows        []analytics.CohortRow        `json:"rows"`
	Pooled      []PooledCell                 `json:"pooled"`
	Diagnostics []analytics.DiagnosticReport `json:"diagnostics"`
}

// CurvesResponse holds one retention curve per selected cohort.
type CurvesResponse struct {
	Settings    RetentionSettings            `json:"settings"`
	Gate        analytics.Horizon            `json:"gate"`
	Curves      []analytics.Curve            `json:"curves"`
	Diagnostics []analytics.DiagnosticReport `json:"diagnostics"`
}

// RankingResponse ranks cohorts at one horizon.
type RankingResponse struct {
	Settings RetentionSettings `json:"settings"`
	analytics.Ranking
	Diagnostics []analytics.DiagnosticReport `json:"diagnostics"`
}

func settingsOf(q database.CohortQuery) RetentionSettings {
	return RetentionSettings{
		Anchor:      q.Anchor,
		Granularity: q.Granularity,
		Event:       q.Event,
		Horizons:    q.Horizons,
		MinSample:   q.MinSample,
	}
}

func retentionDiagnostics(diags []analytics.Diagnostic) []analytics.DiagnosticReport {
	errs := make([]error, len(diags))
	for i, d := range diags {
		errs[i] = d
	}
	return diagnosticReports(errors.Join(errs...))
}

// AnalyticsRetentionHeatmap returns the retention grid.
//
// @Summary Retention heatmap
// @Description Cells are ok, not_mature (no member old enough), insufficient_sample (fewer than min_sample mature members) or invalid (bound violation, reported in diagnostics). Only ok cells carry a rate.
// @Tags Retention
// @Produce json
// @Param event query string true "Qualifying event: any_session, save_or_share or genuine_planning"
// @Param anchor query string false "signup (default) or activation"
// @Param granularity query string false "week (default) or month"
// @Param horizons query string false "Comma-separated horizons, default D7,D30,D60,D90"
// @Param periods query int false "Number of most recent cohorts"
// @Param min_sample query int false "Minimum mature members for a rate"
// @Param start query string false "First anchor date (YYYY-MM-DD)"
// @Param end query string false "Last anchor date (YYYY-MM-DD)"
// @Param data_source query string false "Comma-separated data sources"
// @Param app_version query string false "Comma-separated app versions"
// @Success 200 {object} models.APIResponse{data=api.HeatmapResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/retention/heatmap [get]
func (h *Handler) AnalyticsRetentionHeatmap(w http.ResponseWriter, r *http.Request) {
	req := parseRetentionRequest(r, h.config.Analytics)
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	q, apiErr := req.toQuery()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	NewAnalyticsQueryExecutor(h).Execute(w, r, invalidation.ScopeRetention, req, q.Filter,
		func(ctx context.Context) (interface{}, error) {
			rows, diags, err := h.db.CohortRetention(ctx, q)
			if err != nil {
				return nil, err
			}
			pooled := make([]PooledCell, len(q.Horizons))
			for i, hz := range q.Horizons {
				pooled[i] = PooledCell{Horizon: hz, Rate: analytics.PooledRetention(rows, hz)}
			}
			return HeatmapResponse{
				Settings:    settingsOf(q),
				Rows:        rows,
				Pooled:      pooled,
				Diagnostics: retentionDiagnostics(diags),
			}, nil
		})
}

// AnalyticsRetentionCurves returns retention curves for recent cohorts.
//
// @Summary Retention curves
// @Description Curves start at D0 = 100% and follow the requested horizons for the most recent cohorts whose gate cell is ok.
// @Tags Retention
// @Produce json
// @Param event query string true "Qualifying event: any_session, save_or_share or genuine_planning"
// @Param anchor query string false "signup (default) or activation"
// @Param granularity query string false "week (default) or month"
// @Param horizons query string false "Comma-separated horizons, default D7,D30,D60,D90"
// @Param gate query string false "Horizon a cohort must be reportable at, default the first horizon"
// @Param cohorts query int false "Number of curves"
// @Param min_sample query int false "Minimum mature members for a rate"
// @Success 200 {object} models.APIResponse{data=api.CurvesResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/retention/curves [get]
func (h *Handler) AnalyticsRetentionCurves(w http.ResponseWriter, r *http.Request) {
	base := parseRetentionRequest(r, h.config.Analytics)
	gate := ""
	if len(base.Horizons) > 0 {
		gate = base.Horizons[0]
	}
	req := CurvesRequest{
		Cohorts:          getIntParam(r, "cohorts", h.config.Analytics.CurveCohorts),
		Gate:             getStringParam(r, "gate", gate),
		RetentionRequest: base,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	q, apiErr := req.toQuery()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	gateHorizon, _ := analytics.ParseHorizon(req.Gate)
	if !containsHorizon(q.Horizons, gateHorizon) {
		q.Horizons = append(q.Horizons, gateHorizon)
	}
	if !analytics.SameUnit(q.Horizons) {
		respondValidationError(w, &models.APIError{
			Code:    models.CodeValidation,
			Message: "curve horizons and gate must all be day horizons or all month horizons",
			Details: map[string]interface{}{"horizons": req.Horizons, "gate": req.Gate},
		})
		return
	}

	NewAnalyticsQueryExecutor(h).Execute(w, r, invalidation.ScopeRetention, req, q.Filter,
		func(ctx context.Context) (interface{}, error) {
			rows, diags, err := h.db.CohortRetention(ctx, q)
			if err != nil {
				return nil, err
			}
			return CurvesResponse{
				Settings:    settingsOf(q),
				Gate:        gateHorizon,
				Curves:      analytics.SelectCurveCohorts(rows, gateHorizon, req.Cohorts),
				Diagnostics: retentionDiagnostics(diags),
			}, nil
		})
}

// AnalyticsRetentionRanking ranks cohorts by retention at one horizon.
//
// @Summary Cohort ranking
// @Description Ranks cohorts with an ok cell at the horizon; ties go to the larger cohort. Cohorts below min_sample or not yet mature are counted in excluded.
// @Tags Retention
// @Produce json
// @Param event query string true "Qualifying event: any_session, save_or_share or genuine_planning"
// @Param horizon query string false "Ranking horizon, default D30"
// @Param order query string false "worst (default) or best"
// @Param limit query int false "Maximum cohorts returned"
// @Param anchor query string false "signup (default) or activation"
// @Param granularity query string false "week (default) or month"
// @Param periods query int false "Number of most recent cohorts considered"
// @Param min_sample query int false "Minimum mature members for a rate"
// @Success 200 {object} models.APIResponse{data=api.RankingResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/retention/ranking [get]
func (h *Handler) AnalyticsRetentionRanking(w http.ResponseWriter, r *http.Request) {
	base := parseRetentionRequest(r, h.config.Analytics)
	req := RankingRequest{
		Horizon:          getStringParam(r, "horizon", "D30"),
		Order:            getStringParam(r, "order", string(analytics.Worst)),
		Limit:            getIntParam(r, "limit", h.config.Analytics.RankingLimit),
		RetentionRequest: base,
	}
	req.Horizons = []string{req.Horizon}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	q, apiErr := req.toQuery()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	horizon := q.Horizons[0]

	NewAnalyticsQueryExecutor(h).Execute(w, r, invalidation.ScopeRetention, req, q.Filter,
		func(ctx context.Context) (interface{}, error) {
			rows, diags, err := h.db.CohortRetention(ctx, q)
			if err != nil {
				return nil, err
			}
			return RankingResponse{
				Settings:    settingsOf(q),
				Ranking:     analytics.RankCohorts(rows, horizon, analytics.Order(req.Order), req.Limit),
				Diagnostics: retentionDiagnostics(diags),
			}, nil
		})
}

func containsHorizon(hs []analytics.Horizon, h analytics.Horizon) bool {
	for _, have := range hs {
		if have == h {
			return true
		}
	}
	return false
}
