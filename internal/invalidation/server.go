// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package invalidation

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/northstar/internal/logging"
)

// EmbeddedServer runs an in-process NATS broker for single-node
// deployments. JetStream is off: refresh events are fire-and-forget.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// ServerOptions configures the embedded broker.
type ServerOptions struct {
	Host string
	// Port -1 picks a random free port.
	Port  int
	Quiet bool
}

// NewEmbeddedServer starts the broker and waits until it accepts clients.
func NewEmbeddedServer(opts ServerOptions) (*EmbeddedServer, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "northstar-invalidation",
		Host:       opts.Host,
		Port:       opts.Port,
		JetStream:  false,
		NoLog:      opts.Quiet,
		NoSigs:     true,
		MaxPayload: 64 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	if !opts.Quiet {
		ns.ConfigureLogger()
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}

	logging.Info().Str("url", ns.ClientURL()).Msg("Embedded NATS server started")

	return &EmbeddedServer{
		server:    ns,
		clientURL: ns.ClientURL(),
	}, nil
}

// ClientURL returns the connection URL for clients.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// IsRunning reports broker health.
func (s *EmbeddedServer) IsRunning() bool {
	return s.server.Running()
}

// Shutdown stops the broker, waiting for it unless ctx is already done.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	s.server.Shutdown()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.server.WaitForShutdown()
		return nil
	}
}

// Serve keeps the broker alive until ctx is canceled, then shuts it down.
// It implements suture.Service so the broker stops with the messaging layer.
func (s *EmbeddedServer) Serve(ctx context.Context) error {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("Embedded NATS server shutdown incomplete")
	}
	return ctx.Err()
}

func (s *EmbeddedServer) String() string {
	return "nats-embedded"
}
