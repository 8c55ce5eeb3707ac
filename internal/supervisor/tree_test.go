// Northstar - Planning Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/northstar

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/northstar/internal/cache"
)

// testService runs until canceled, optionally failing its first fails runs.
type testService struct {
	name   string
	fails  int32
	starts atomic.Int32
}

func (s *testService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *testService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewSupervisorTree(t *testing.T) {
	t.Run("applies defaults for zero config", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}
		if tree.config != DefaultTreeConfig() {
			t.Errorf("config = %+v, want defaults", tree.config)
		}
		if tree.Root() == nil || len(tree.layers) != 3 {
			t.Errorf("root %v, %d layers", tree.Root(), len(tree.layers))
		}
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
		if err != nil {
			t.Fatalf("NewSupervisorTree: %v", err)
		}
		if tree.config.FailureBackoff != time.Second || tree.config.FailureThreshold != 5 {
			t.Errorf("config = %+v", tree.config)
		}
	})

	t.Run("rejects nil logger", func(t *testing.T) {
		if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
			t.Error("expected error for nil logger")
		}
	})
}

func TestSupervisorTreeStartsEveryLayer(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	svcs := map[Layer]*testService{
		LayerData:      {name: "data"},
		LayerMessaging: {name: "messaging"},
		LayerAPI:       {name: "api"},
	}
	for layer, svc := range svcs {
		if _, err := tree.Add(layer, svc); err != nil {
			t.Fatalf("Add(%s): %v", layer, err)
		}
	}
	if _, err := tree.Add("bogus", &testService{name: "x"}); err == nil {
		t.Error("Add to unknown layer succeeded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitFor(t, 2*time.Second, func() bool {
		for _, svc := range svcs {
			if svc.starts.Load() == 0 {
				return false
			}
		}
		return true
	})

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not shut down in time")
	}
}

func TestSupervisorTreeRestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := &testService{name: "flaky-subscriber", fails: 2}
	stable := &testService{name: "http"}
	tree.AddMessagingService(flaky)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	waitFor(t, 2*time.Second, func() bool { return flaky.starts.Load() >= 3 })
	if stable.starts.Load() != 1 {
		t.Errorf("stable service started %d times, want 1", stable.starts.Load())
	}
}

func TestSupervisorTreeRemove(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	svc := &testService{name: "removable"}
	token, err := tree.Add(LayerMessaging, svc)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)
	waitFor(t, 2*time.Second, func() bool { return svc.starts.Load() > 0 })

	if err := tree.Remove(LayerMessaging, token); err != nil {
		t.Errorf("Remove: %v", err)
	}
	if err := tree.Remove("bogus", token); err == nil {
		t.Error("Remove from unknown layer succeeded")
	}
}

func TestSupervisorTreeRunsCacheJanitor(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	now := time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)
	var clock atomic.Int64
	clock.Store(now.UnixNano())
	c := cache.New(time.Minute,
		cache.WithName("results"),
		cache.WithCleanupInterval(20*time.Millisecond),
		cache.WithClock(func() time.Time { return time.Unix(0, clock.Load()).UTC() }))
	c.Set("rate:abc", 1)
	tree.AddDataService(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	clock.Store(now.Add(2 * time.Minute).UnixNano())
	waitFor(t, 2*time.Second, func() bool { return c.Len() == 0 })
}
