// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package logging provides centralized zerolog-based structured logging for Northstar.
//
// JSON output is the default; the console format is intended for local runs.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Warehouse unavailable")
//
// # Adapters
//
// Some dependencies take their own logger types:
//
//	slogger := logging.NewSlogLogger()           // suture via sutureslog
//	wmLogger := logging.NewWatermillAdapter()    // watermill NATS pub/sub
//
// Both write through the global zerolog logger, so level and format
// settings apply uniformly.
//
// # Request Context
//
// The API middleware stores a request ID (full UUID) and a correlation ID
// (8 characters) in the request context. Ctx(ctx) adds both as fields.
package logging
