package offsync_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zhCaiCode/offsync"
)

func TestManualMonitorFiresOncePerTransition(t *testing.T) {
	t.Parallel()
	monitor := offsync.NewManualMonitor(false)

	var calls []bool
	cancel := monitor.Subscribe(func(online bool) {
		calls = append(calls, online)
	})
	defer cancel()

	monitor.SetOnline(true)
	monitor.SetOnline(true) // no-op, same state
	monitor.SetOnline(false)
	monitor.SetOnline(true)

	want := []bool{true, false, true}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
	if !monitor.Online() {
		t.Fatal("Online() = false, want true")
	}
}

func TestManualMonitorUnsubscribe(t *testing.T) {
	t.Parallel()
	monitor := offsync.NewManualMonitor(false)

	var calls int
	cancel := monitor.Subscribe(func(bool) { calls++ })
	monitor.SetOnline(true)
	cancel()
	monitor.SetOnline(false)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 after cancel", calls)
	}
}

func TestProbeMonitor(t *testing.T) {
	t.Parallel()

	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	monitor := offsync.NewProbeMonitor(srv.URL, 10*time.Millisecond)
	edges := make(chan bool, 8)
	cancel := monitor.Subscribe(func(online bool) { edges <- online })
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() { _ = monitor.Run(ctx) }()

	if got := waitEdge(t, edges); !got {
		t.Fatal("first edge = offline, want online")
	}

	healthy.Store(false)
	if got := waitEdge(t, edges); got {
		t.Fatal("expected offline edge after endpoint starts failing")
	}

	healthy.Store(true)
	if got := waitEdge(t, edges); !got {
		t.Fatal("expected online edge after endpoint recovers")
	}
}

func waitEdge(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case online := <-ch:
		return online
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for connectivity edge")
		return false
	}
}
