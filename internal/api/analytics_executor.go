// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/northstar/internal/cache"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/models"
)

// emptyResult is cached in place of data when a query matched nothing, so
// repeated requests for an empty slice do not hit the warehouse either.
type emptyResult struct {
	Op string
}

// AnalyticsQueryFunc runs one warehouse query for a resolved request.
type AnalyticsQueryFunc func(ctx context.Context) (interface{}, error)

// AnalyticsQueryExecutor encapsulates the cache-first flow shared by every
// analytics handler:
//
//  1. Derive the cache key from the scope and the resolved request
//  2. Serve a cached result (data or explicit empty) when present
//  3. Otherwise run the query
//  4. Cache successful results and empty results, never errors
//  5. Respond with metadata (query time, cached flag, applied filter)
//
// Example:
//
//	executor := NewAnalyticsQueryExecutor(h)
//	executor.Execute(w, r, invalidation.ScopeActivation, req, filter,
//	    func(ctx context.Context) (interface{}, error) {
//	        return h.db.ActivationSummary(ctx, filter)
//	    })
type AnalyticsQueryExecutor struct {
	handler *Handler
}

// NewAnalyticsQueryExecutor creates an executor bound to h's store and cache.
func NewAnalyticsQueryExecutor(h *Handler) *AnalyticsQueryExecutor {
	return &AnalyticsQueryExecutor{handler: h}
}

// Execute runs queryFunc through the result cache. params must capture
// everything the result depends on; it is hashed into the cache key.
func (e *AnalyticsQueryExecutor) Execute(
	w http.ResponseWriter,
	r *http.Request,
	scope string,
	params interface{},
	filter database.Filter,
	queryFunc AnalyticsQueryFunc,
) {
	meta := models.Metadata{Filter: filter.String()}

	if e.handler.db == nil {
		respondQueryError(w, r, scope, errNoWarehouse, meta)
		return
	}

	cacheKey := cache.GenerateKey(scope, params)
	if e.handler.cache != nil {
		if cached, found := e.handler.cache.Get(cacheKey); found {
			meta.Cached = true
			if _, isEmpty := cached.(emptyResult); isEmpty {
				respondEmpty(w, meta)
				return
			}
			respondSuccess(w, cached, meta)
			return
		}
	}

	start := time.Now()
	data, err := queryFunc(r.Context())
	meta.QueryTimeMS = time.Since(start).Milliseconds()

	if err != nil {
		if isEmptyResult(err) && e.handler.cache != nil {
			e.handler.cache.Set(cacheKey, emptyResult{Op: scope})
		}
		respondQueryError(w, r, scope, err, meta)
		return
	}

	if e.handler.cache != nil {
		e.handler.cache.Set(cacheKey, data)
	}
	respondSuccess(w, data, meta)
}

func isEmptyResult(err error) bool {
	var empty *database.EmptyResultError
	return errors.As(err, &empty)
}
