// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// Compile-time interface checks.
var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ HTTPServer     = (*http.Server)(nil)
)

// failingServer returns serveErr from Serve and counts shutdowns.
type failingServer struct {
	serveErr  error
	shutdowns atomic.Int32
}

func (f *failingServer) Serve(l net.Listener) error {
	_ = l.Close()
	return f.serveErr
}

func (f *failingServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	return nil
}

func TestHTTPServerService_ServesAndShutsDown(t *testing.T) {
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "ok")
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	select {
	case <-svc.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("server never bound")
	}

	resp, err := http.Get("http://" + svc.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer busy.Close()

	svc := NewHTTPServerService(&failingServer{}, busy.Addr().String(), time.Second)
	err = svc.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listen") {
		t.Errorf("Serve = %v, want a listen error", err)
	}
	if svc.Addr() != nil {
		t.Error("Addr set although bind failed")
	}
}

func TestHTTPServerService_ServeErrors(t *testing.T) {
	tests := []struct {
		name     string
		serveErr error
		wantNil  bool
	}{
		{"server closed is clean", http.ErrServerClosed, true},
		{"crash is reported", errors.New("accept: too many open files"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &failingServer{serveErr: tt.serveErr}
			svc := NewHTTPServerService(srv, "127.0.0.1:0", time.Second)
			err := svc.Serve(context.Background())
			if (err == nil) != tt.wantNil {
				t.Errorf("Serve = %v", err)
			}
			if srv.shutdowns.Load() != 0 {
				t.Error("Shutdown called without cancellation")
			}
		})
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(&failingServer{}, ":3857", 0)
	if svc.String() != "http-server::3857" {
		t.Errorf("String() = %q", svc.String())
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v", svc.shutdownTimeout)
	}
}
