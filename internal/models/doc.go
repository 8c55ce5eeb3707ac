// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package models defines the HTTP response envelope shared by every endpoint.
//
// Analytics payloads themselves are the database and analytics types; this
// package only carries APIResponse, its Metadata and APIError, plus the
// health and refresh bodies that have no warehouse counterpart.
package models
