package offsync_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/zhCaiCode/offsync"
)

func TestHTTPSenderSend(t *testing.T) {
	t.Parallel()
	var (
		mu     sync.Mutex
		bodies []string
		ctypes []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		ctypes = append(ctypes, r.Header.Get("Content-Type"))
		mu.Unlock()
	}))
	defer srv.Close()

	sender := offsync.NewHTTPSender(srv.URL)
	rec := mustRecord(t, map[string]string{"event": "signup"})
	if err := sender.Send(context.Background(), rec); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 1 {
		t.Fatalf("requests = %d, want 1", len(bodies))
	}
	if ctypes[0] != "application/json" {
		t.Fatalf("Content-Type = %q", ctypes[0])
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(bodies[0]), &got); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if got["event"] != "signup" {
		t.Fatalf("body = %v", got)
	}
}

func TestHTTPSenderSendBatch(t *testing.T) {
	t.Parallel()
	var (
		mu   sync.Mutex
		body []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = b
		mu.Unlock()
	}))
	defer srv.Close()

	sender := offsync.NewHTTPSender(srv.URL)
	batch := []offsync.Record{
		mustRecord(t, map[string]string{"event": "a"}),
		mustRecord(t, map[string]string{"event": "b"}),
	}
	if err := sender.SendBatch(context.Background(), batch); err != nil {
		t.Fatalf("SendBatch error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	var got []map[string]string
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("request body is not a JSON array: %v", err)
	}
	if len(got) != 2 || got[0]["event"] != "a" || got[1]["event"] != "b" {
		t.Fatalf("batch body = %v", got)
	}
}

func TestHTTPSenderNon2xx(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := offsync.NewHTTPSender(srv.URL)
	err := sender.Send(context.Background(), mustRecord(t, map[string]string{"event": "a"}))

	var se *offsync.SendError
	if !errors.As(err, &se) {
		t.Fatalf("Send error = %v, want *SendError", err)
	}
	if se.StatusCode != http.StatusBadGateway {
		t.Fatalf("StatusCode = %d, want 502", se.StatusCode)
	}
}

func TestHTTPSenderUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	sender := offsync.NewHTTPSender(srv.URL)
	err := sender.Send(context.Background(), mustRecord(t, map[string]string{"event": "a"}))

	var se *offsync.SendError
	if !errors.As(err, &se) {
		t.Fatalf("Send error = %v, want *SendError", err)
	}
	if se.StatusCode != 0 {
		t.Fatalf("StatusCode = %d, want 0 for a transport error", se.StatusCode)
	}
}
