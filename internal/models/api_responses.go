// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package models

import (
	"time"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusEmpty   = "empty"
	StatusError   = "error"
)

// Error codes.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeQuery            = "QUERY_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeEmptyResult      = "EMPTY_RESULT"
	CodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIResponse wraps every HTTP response.
//
// Status is one of:
//   - "success": Data holds the result
//   - "empty": the query ran and matched nothing; Data is null and Error
//     explains why so clients render "no data" instead of zeros
//   - "error": Error holds the failure and a recovery hint
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"metric": "ssr", "rate": 0.42},
//	  "metadata": {"timestamp": "2026-03-12T12:00:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes how a response was produced. QueryTimeMS is 0 for
// cache hits.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	// Filter echoes the applied filter in compact form.
	Filter string `json:"filter,omitempty"`
}

// APIError is a machine-readable failure.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Hint    string                 `json:"hint,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	Warehouse     string     `json:"warehouse"`
	Breaker       string     `json:"breaker"`
	Invalidation  string     `json:"invalidation"`
	Sessions      int64      `json:"sessions"`
	Users         int64      `json:"users"`
	Uptime        float64    `json:"uptime_seconds"`
	LastRefreshAt *time.Time `json:"last_refresh_at,omitempty"`
}

// RefreshResponse reports a manual cache refresh.
type RefreshResponse struct {
	Cleared   int       `json:"cleared"`
	Broadcast bool      `json:"broadcast"`
	RequestID string    `json:"request_id"`
	At        time.Time `json:"at"`
}
