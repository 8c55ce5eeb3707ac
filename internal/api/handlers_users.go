// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/invalidation"
)

// ActivationResponse combines the activation views for one signup window.
type ActivationResponse struct {
	Summary          database.ActivationSummary     `json:"summary"`
	Types            []database.ActivationTypeShare `json:"types"`
	TimeToActivation []database.TimeBucket          `json:"time_to_activation"`
}

// EngagementResponse is the engagement summary with its daily series.
type EngagementResponse struct {
	Summary database.EngagementSummary `json:"summary"`
	Daily   []database.DailyActive     `json:"daily"`
}

// AnalyticsActivation returns activation rate, type mix and time to activate.
//
// @Summary Activation
// @Description Users are selected by signup date. Filtering by session_type is rejected because activation rows carry no session type.
// @Tags Users
// @Produce json
// @Param start query string false "First signup date (YYYY-MM-DD), defaults to the lookback window"
// @Param end query string false "Last signup date (YYYY-MM-DD)"
// @Param data_source query string false "Comma-separated data sources"
// @Param app_version query string false "Comma-separated app versions"
// @Success 200 {object} models.APIResponse{data=api.ActivationResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/activation [get]
func (h *Handler) AnalyticsActivation(w http.ResponseWriter, r *http.Request) {
	req := h.lookback(parseFilterParams(r))
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	filter, apiErr := req.toFilter()
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	NewAnalyticsQueryExecutor(h).Execute(w, r, invalidation.ScopeActivation, req, filter,
		func(ctx context.Context) (interface{}, error) {
			summary, err := h.db.ActivationSummary(ctx, filter)
			if err != nil {
				return nil, err
			}
			// The summary found signups, so an empty breakdown just means
			// nobody activated yet.
			types, err := h.db.ActivationTypes(ctx, filter)
			if err != nil && !isEmptyResult(err) {
				return nil, err
			}
			buckets, err := h.db.TimeToActivation(ctx, filter)
			if err != nil && !isEmptyResult(err) {
				return nil, err
			}
			if types == nil {
				types = []database.ActivationTypeShare{}
			}
			if buckets == nil {
				buckets = []database.TimeBucket{}
			}
			return ActivationResponse{Summary: summary, Types: types, TimeToActivation: buckets}, nil
		})
}

// AnalyticsEngagement returns DAU/WAU/MAU, WAP/MAP and the daily series.
//
// @Summary Engagement
// @Description Active users and planners over trailing windows ending today. Stickiness is DAU/MAU.
// @Tags Users
// @Produce json
// @Param days query int false "Length of the daily series (default 30)"
// @Param data_source query string false "Comma-separated data sources"
// @Param session_type query string false "Comma-separated session types"
// @Param app_version query string false "Comma-separated app versions"
// @Success 200 {object} models.APIResponse{data=api.EngagementResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /analytics/engagement [get]
func (h *Handler) AnalyticsEngagement(w http.ResponseWriter, r *http.Request) {
	req := EngagementRequest{
		Days:         getIntParam(r, "days", 30),
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

	NewAnalyticsQueryExecutor(h).Execute(w, r, invalidation.ScopeEngagement, req, filter,
		func(ctx context.Context) (interface{}, error) {
			summary, err := h.db.Engagement(ctx, filter)
			if err != nil {
				return nil, err
			}
			daily, err := h.db.DailyActiveSeries(ctx, filter, req.Days)
			if err != nil && !isEmptyResult(err) {
				return nil, err
			}
			if daily == nil {
				daily = []database.DailyActive{}
			}
			return EngagementResponse{Summary: summary, Daily: daily}, nil
		})
}
