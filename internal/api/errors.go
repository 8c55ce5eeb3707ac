// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/models"
)

// errNoWarehouse is reported when the handler was built without a store.
var errNoWarehouse = errors.New("warehouse not configured")

// retryAfterSeconds is sent with 503 responses; it matches the default
// breaker open timeout.
const retryAfterSeconds = "30"

// maxErrorDetail bounds the cause text echoed to clients.
const maxErrorDetail = 256

// errorDetail renders the cause of a failure for the response body: the
// first line only, control characters escaped, bounded in length. The SQL
// text is never part of it.
func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	msg, _, _ := strings.Cut(err.Error(), "\n")
	msg = sanitizeLogValue(strings.TrimSpace(msg))
	if r := []rune(msg); len(r) > maxErrorDetail {
		msg = string(r[:maxErrorDetail]) + "..."
	}
	return msg
}

// respondQueryError maps a warehouse error to its HTTP form. Nothing is
// retried and nothing becomes a zero:
//
//	*database.EmptyResultError        200 status "empty"
//	*database.QueryError (Invalid)    400 QUERY_ERROR
//	*database.QueryError              500 QUERY_ERROR
//	*database.ConnectionError         503 STORE_UNAVAILABLE
//
// 500 and 503 bodies carry the cause in details.error so the dashboard can
// show why the section failed.
func respondQueryError(w http.ResponseWriter, r *http.Request, op string, err error, meta models.Metadata) {
	logger := logging.Ctx(r.Context())

	var empty *database.EmptyResultError
	var conn *database.ConnectionError
	var qe *database.QueryError

	switch {
	case errors.As(err, &empty):
		logger.Debug().Str("op", op).Msg("Query matched no rows")
		respondEmpty(w, meta)

	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// The client went away; nobody is listening for a response.
		logger.Debug().Str("op", op).Msg("Request canceled by client")

	case errors.As(err, &conn), errors.Is(err, errNoWarehouse):
		logger.Error().Err(err).Str("op", op).Msg("Warehouse unavailable")
		cause := err
		if conn != nil && conn.Err != nil {
			cause = conn.Err
		}
		w.Header().Set("Retry-After", retryAfterSeconds)
		respondErrorWithHint(w, http.StatusServiceUnavailable, &models.APIError{
			Code:    models.CodeStoreUnavailable,
			Message: "The analytics warehouse is unavailable",
			Details: map[string]interface{}{"op": op, "error": errorDetail(cause)},
			Hint:    "Retry shortly; results are not shown as zero while the store is down",
		}, nil)

	case errors.As(err, &qe) && qe.Invalid:
		logger.Warn().Err(err).Str("op", op).Msg("Rejected invalid query")
		respondErrorWithHint(w, http.StatusBadRequest, &models.APIError{
			Code:    models.CodeQuery,
			Message: qe.Detail,
			Details: map[string]interface{}{"op": qe.Op},
		}, nil)

	case errors.As(err, &qe):
		logger.Error().Err(err).Str("op", op).Msg("Warehouse query failed")
		cause := qe.Err
		if cause == nil {
			cause = errors.New(qe.Detail)
		}
		respondErrorWithHint(w, http.StatusInternalServerError, &models.APIError{
			Code:    models.CodeQuery,
			Message: "The warehouse could not run the query",
			Details: map[string]interface{}{"op": qe.Op, "error": errorDetail(cause)},
		}, nil)

	default:
		logger.Error().Err(err).Str("op", op).Msg("Unexpected analytics error")
		respondErrorWithHint(w, http.StatusInternalServerError, &models.APIError{
			Code:    models.CodeInternal,
			Message: "Internal server error",
			Details: map[string]interface{}{"op": op, "error": errorDetail(err)},
		}, nil)
	}
}
