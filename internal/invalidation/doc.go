// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

/*
Package invalidation keeps the analytics result cache in step with the
warehouse.

The upstream pipeline publishes a RefreshEvent on a NATS subject (default
"warehouse.refreshed") after it rebuilds gold tables:

	{"tables": ["gold.session_outcomes"], "refreshed_at": "2026-03-12T06:00:00Z"}

Subscriber maps the tables to the cache scopes whose queries read them and
drops those entries. An empty table list, or a table this service does not
know, clears the whole cache. Publisher sends the same event when an
operator triggers a manual refresh so every replica clears, not just the one
that served the request.

Transport is Watermill over core NATS with JetStream disabled. Missing an
event only means serving a result until its TTL expires, so durability is
not worth a stream. For single-node deployments EmbeddedServer runs the
broker in process.

Both Subscriber and EmbeddedServer implement suture.Service and run in the
messaging layer of the supervisor tree.
*/
package invalidation
