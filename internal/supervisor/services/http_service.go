// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/northstar/internal/logging"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService runs an HTTP server under suture.
//
// The listener is bound inside Serve so a port conflict surfaces as a
// service failure (and a supervised retry) instead of a silent goroutine
// exit. On context cancellation in-flight requests get shutdownTimeout to
// finish.
//
// Example usage:
//
//	server := &http.Server{Handler: router.SetupChi(), ReadHeaderTimeout: 10 * time.Second}
//	tree.AddAPIService(services.NewHTTPServerService(server, ":3857", 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration

	mu    sync.Mutex
	bound net.Addr
	ready chan struct{}
}

// NewHTTPServerService wraps server to listen on addr.
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
		ready:           make(chan struct{}),
	}
}

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// shutdown and a wrapped error when binding or serving fails.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("http server listen on %s: %w", h.addr, err)
	}
	h.markReady(ln.Addr())
	logging.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
		// The original context is canceled, so shut down on a fresh one.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) markReady(addr net.Addr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bound = addr
	select {
	case <-h.ready:
	default:
		close(h.ready)
	}
}

// Ready is closed once the listener has been bound for the first time.
func (h *HTTPServerService) Ready() <-chan struct{} {
	return h.ready
}

// Addr is the bound address, or nil before the first bind. Useful with
// port 0.
func (h *HTTPServerService) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound
}

// String implements fmt.Stringer; suture uses it in log events.
func (h *HTTPServerService) String() string {
	return "http-server:" + h.addr
}
