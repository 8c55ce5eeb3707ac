// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/northstar/internal/analytics"
	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/models"
)

// Request structs are filled from query parameters, validated with
// go-playground/validator, then resolved into database types. Each struct
// is also the cache key input, so two requests that resolve to the same
// struct share a cached result.

// maxFilterValues bounds the values of one dimension filter.
const maxFilterValues = 20

// FilterParams are the filter parameters shared by analytics endpoints. An
// omitted dimension is the wildcard. The literal value "all" is an ordinary
// value and only matches rows whose dimension is "all".
type FilterParams struct {
	Start       string   `query:"start" json:"start,omitempty" validate:"omitempty,dateonly"`
	End         string   `query:"end" json:"end,omitempty" validate:"omitempty,dateonly"`
	DataSource  []string `query:"data_source" json:"data_source,omitempty" validate:"max=20,dive,dimvalue,oneof=native inferred all"`
	SessionType []string `query:"session_type" json:"session_type,omitempty" validate:"max=20,dive,dimvalue,oneof=prompt non_prompt all"`
	AppVersion  []string `query:"app_version" json:"app_version,omitempty" validate:"max=20,dive,dimvalue"`
}

func parseFilterParams(r *http.Request) FilterParams {
	return FilterParams{
		Start:       getStringParam(r, "start", ""),
		End:         getStringParam(r, "end", ""),
		DataSource:  queryList(r, "data_source"),
		SessionType: queryList(r, "session_type"),
		AppVersion:  queryList(r, "app_version"),
	}
}

// withDefaultLookback fills an open date range with the trailing lookback
// window ending today.
func (p FilterParams) withDefaultLookback(days int, today time.Time) FilterParams {
	if p.Start != "" || p.End != "" || days <= 0 {
		return p
	}
	p.Start = today.AddDate(0, 0, -(days - 1)).Format(time.DateOnly)
	p.End = today.Format(time.DateOnly)
	return p
}

// toFilter builds the database filter. Call after validation, which
// guarantees the dates parse.
func (p FilterParams) toFilter() (database.Filter, *models.APIError) {
	var f database.Filter

	var start, end time.Time
	if p.Start != "" {
		start, _ = time.Parse(time.DateOnly, p.Start)
	}
	if p.End != "" {
		end, _ = time.Parse(time.DateOnly, p.End)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return f, &models.APIError{
			Code:    models.CodeValidation,
			Message: "end must not be before start",
			Details: map[string]interface{}{"start": p.Start, "end": p.End},
		}
	}
	f = f.WithRange(database.Days(start, end))

	dims := []struct {
		dim    database.Dimension
		values []string
	}{
		{database.DimDataSource, p.DataSource},
		{database.DimSessionType, p.SessionType},
		{database.DimAppVersion, p.AppVersion},
	}
	for _, d := range dims {
		if len(d.values) > 0 {
			f = f.With(d.dim, database.Eq(d.values...))
		}
	}
	return f, nil
}

// RateRequest selects a metric and, optionally, a series bucket.
type RateRequest struct {
	Metric string `query:"metric" json:"metric" validate:"required,max=64"`
	Bucket string `query:"bucket" json:"bucket,omitempty" validate:"omitempty,oneof=day week month"`
	FilterParams
}

// PeriodRequest selects the comparison window of WoW/MoM views.
type PeriodRequest struct {
	Period string `query:"period" json:"period" validate:"required,oneof=week month"`
	FilterParams
}

// FunnelRequest selects a funnel and optional period comparison.
type FunnelRequest struct {
	Name    string `query:"name" json:"name" validate:"required,max=64"`
	Compare string `query:"compare" json:"compare,omitempty" validate:"omitempty,oneof=previous"`
	Period  string `query:"period" json:"period" validate:"required,oneof=week month"`
	FilterParams
}

// RetentionRequest configures the cohort computation shared by heatmap,
// curves and ranking. The qualifying event is always explicit.
type RetentionRequest struct {
	Anchor      string   `query:"anchor" json:"anchor" validate:"required,oneof=signup activation"`
	Granularity string   `query:"granularity" json:"granularity" validate:"required,oneof=week month"`
	Event       string   `query:"event" json:"event" validate:"required,oneof=any_session save_or_share genuine_planning"`
	Horizons    []string `query:"horizons" json:"horizons" validate:"min=1,max=16,dive,horizon"`
	Periods     int      `query:"periods" json:"periods" validate:"min=1,max=104"`
	MinSample   int      `query:"min_sample" json:"min_sample" validate:"min=1,max=1000000"`
	FilterParams
}

func parseRetentionRequest(r *http.Request, cfg config.AnalyticsConfig) RetentionRequest {
	horizons := queryList(r, "horizons")
	if len(horizons) == 0 {
		horizons = []string{"D7", "D30", "D60", "D90"}
	}
	return RetentionRequest{
		Anchor:       getStringParam(r, "anchor", string(database.AnchorSignup)),
		Granularity:  getStringParam(r, "granularity", string(analytics.Week)),
		Event:        getStringParam(r, "event", ""),
		Horizons:     horizons,
		Periods:      getIntParam(r, "periods", cfg.HeatmapPeriods),
		MinSample:    getIntParam(r, "min_sample", cfg.MinCohortSample),
		FilterParams: parseFilterParams(r),
	}
}

// toQuery resolves a validated request.
func (req RetentionRequest) toQuery() (database.CohortQuery, *models.APIError) {
	f, apiErr := req.FilterParams.toFilter()
	if apiErr != nil {
		return database.CohortQuery{}, apiErr
	}
	horizons, err := analytics.ParseHorizons(req.Horizons)
	if err != nil {
		return database.CohortQuery{}, &models.APIError{Code: models.CodeValidation, Message: err.Error()}
	}
	return database.CohortQuery{
		Anchor:      database.Anchor(req.Anchor),
		Granularity: analytics.Granularity(req.Granularity),
		Event:       database.QualifyingEvent(req.Event),
		Horizons:    horizons,
		Periods:     req.Periods,
		MinSample:   req.MinSample,
		Filter:      f,
	}, nil
}

// CurvesRequest picks the most recent cohorts mature at Gate.
type CurvesRequest struct {
	Cohorts int    `query:"cohorts" json:"cohorts" validate:"min=1,max=52"`
	Gate    string `query:"gate" json:"gate" validate:"required,horizon"`
	RetentionRequest
}

// RankingRequest ranks cohorts by their rate at Horizon.
type RankingRequest struct {
	Horizon string `query:"horizon" json:"horizon" validate:"required,horizon"`
	Order   string `query:"order" json:"order" validate:"required,oneof=worst best"`
	Limit   int    `query:"limit" json:"limit" validate:"min=1,max=100"`
	RetentionRequest
}

// EngagementRequest adds the length of the daily series.
type EngagementRequest struct {
	Days int `query:"days" json:"days" validate:"min=1,max=365"`
	FilterParams
}
