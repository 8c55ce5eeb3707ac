// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

// Package services adapts blocking servers to suture.Service.
//
// Components that already follow the Serve(ctx) error contract (the cache
// janitor, the embedded NATS server and the refresh subscriber) are added
// to the tree directly. Only net/http needs an adapter, because
// http.Server blocks in Serve and stops through Shutdown.
package services
