// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package supervisor runs the server's long-lived services under suture v4.

# Overview

	RootSupervisor ("northstar")
	├── data-layer
	│   ├── cache janitor (cache.Cache)
	│   └── embedded NATS server (invalidation.EmbeddedServer, optional)
	├── messaging-layer
	│   └── refresh subscriber (invalidation.Subscriber, optional)
	└── api-layer
	    └── HTTP server (services.HTTPServerService)

A failing child restarts inside its own layer. Losing the refresh
subscriber only delays invalidation until the cache TTL; the API layer
keeps serving.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(resultCache)
	tree.AddMessagingService(subscriber)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))
	err = tree.Serve(ctx)

# Service Contract

Every service implements suture.Service:
  - return nil: stopped cleanly, not restarted
  - return an error: crashed, restarted with backoff
  - on context cancellation: return promptly

Services should implement fmt.Stringer; suture uses it in log events,
which are forwarded to zerolog through sutureslog and the slog adapter in
the logging package.

DuckDB is not supervised. It is an embedded library whose failures surface
as typed errors on each query.
*/
package supervisor
