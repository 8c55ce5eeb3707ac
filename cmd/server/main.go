// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	_ "github.com/tomtom215/northstar/docs"
	"github.com/tomtom215/northstar/internal/api"
	"github.com/tomtom215/northstar/internal/cache"
	"github.com/tomtom215/northstar/internal/config"
	"github.com/tomtom215/northstar/internal/database"
	"github.com/tomtom215/northstar/internal/invalidation"
	"github.com/tomtom215/northstar/internal/logging"
	"github.com/tomtom215/northstar/internal/metrics"
	"github.com/tomtom215/northstar/internal/supervisor"
	"github.com/tomtom215/northstar/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Northstar stopped with an error")
	}
}

//nolint:gocyclo // sequential startup steps
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "northstar",
		Version:   version,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("invalidation_enabled", cfg.Invalidation.Enabled).
		Msg("Starting Northstar")
	metrics.SetBuildInfo(version, runtime.Version())

	db, err := database.New(&cfg.Database, cfg.Breaker)
	if err != nil {
		return fmt.Errorf("open warehouse: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing warehouse")
		}
	}()

	if cfg.Database.SeedMockData {
		opts := database.DefaultSeedOptions()
		if cfg.Database.SeedUsers > 0 {
			opts.Users = cfg.Database.SeedUsers
		}
		logging.Info().Int("users", opts.Users).Int("days", opts.Days).Msg("Seeding mock warehouse data")
		if err := db.SeedMockData(context.Background(), opts); err != nil {
			return fmt.Errorf("seed mock data: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// A typed nil would defeat the handler's nil check.
	var resultCache cache.Cacher
	var invalidator cache.Invalidator
	if cfg.Cache.Enabled {
		c := cache.New(cfg.Cache.TTL,
			cache.WithName("results"),
			cache.WithPolicy(cache.ScopedTTLPolicy{Default: cfg.Cache.TTL, Scopes: cfg.Cache.ScopeTTLs}),
			cache.WithCleanupInterval(cfg.Cache.CleanupInterval))
		tree.AddDataService(c)
		resultCache, invalidator = c, c
	} else {
		logging.Warn().Msg("Result cache disabled; every request queries the warehouse")
	}

	opts := []api.HandlerOption{api.WithVersion(version)}

	if cfg.Invalidation.Enabled {
		invOpts, closeFn, err := setupInvalidation(cfg, tree, invalidator)
		if err != nil {
			return err
		}
		defer closeFn()
		opts = append(opts, invOpts...)
	}

	handler := api.NewHandler(db, resultCache, cfg, opts...)
	router := api.NewRouter(handler, cfg)

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + cfg.Database.QueryTimeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.Timeout))

	logging.Info().Str("addr", addr).Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	logging.Info().Msg("Northstar stopped")
	return nil
}

// setupInvalidation wires refresh events: an optional embedded broker in
// the data layer, a publisher for manual refreshes and a subscriber in the
// messaging layer. The returned func closes the publisher.
func setupInvalidation(cfg *config.Config, tree *supervisor.SupervisorTree, inv cache.Invalidator) ([]api.HandlerOption, func(), error) {
	invCfg := &cfg.Invalidation
	url := invCfg.URL

	if invCfg.EmbeddedServer {
		ns, err := invalidation.NewEmbeddedServer(invalidation.ServerOptions{
			Host:  invCfg.EmbeddedHost,
			Port:  invCfg.EmbeddedPort,
			Quiet: cfg.Logging.Level != "debug",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		tree.AddDataService(ns)
		url = ns.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	origin := instanceOrigin()
	wmLogger := logging.NewWatermillAdapter()

	pub, err := invalidation.NewPublisher(invCfg, url, origin, wmLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("create refresh publisher: %w", err)
	}
	closeFn := func() {
		if err := pub.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing refresh publisher")
		}
	}

	opts := []api.HandlerOption{api.WithRefreshBroadcaster(pub)}

	if inv == nil {
		logging.Warn().Msg("Refresh events are published but not consumed: the result cache is disabled")
		return opts, closeFn, nil
	}

	sub := invalidation.NewSubscriber(invCfg, url, origin, inv, wmLogger)
	tree.AddMessagingService(sub)
	opts = append(opts, api.WithInvalidationStatus(func() string {
		if sub.Subscribed() {
			return "subscribed"
		}
		return "reconnecting"
	}))

	logging.Info().
		Str("url", url).
		Str("subject", invCfg.Subject).
		Str("origin", origin).
		Msg("Refresh invalidation enabled")
	return opts, closeFn, nil
}

// instanceOrigin identifies this replica in refresh events so it can skip
// its own broadcasts.
func instanceOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "northstar"
	}
	return host + "-" + uuid.NewString()[:8]
}
