package offsync

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Monitor reports connectivity to the remote endpoint. Notifications are
// edge-triggered: subscribers hear about transitions, never steady state.
// An online->offline flip is delivered too, but the engine only acts on
// the offline->online edge; in-flight sends are left to fail naturally.
type Monitor interface {
	// Online returns the current state.
	Online() bool
	// Subscribe registers fn to be called on every state transition.
	// The returned cancel func removes the subscription.
	Subscribe(fn func(online bool)) (cancel func())
}

// ManualMonitor is a Monitor driven entirely by the host, which is the
// one that knows how connectivity is actually detected on its platform.
type ManualMonitor struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(online bool)
}

// NewManualMonitor creates a monitor with the given initial state.
func NewManualMonitor(online bool) *ManualMonitor {
	return &ManualMonitor{
		online: online,
		subs:   make(map[int]func(online bool)),
	}
}

// Online implements Monitor.
func (m *ManualMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe implements Monitor.
func (m *ManualMonitor) Subscribe(fn func(online bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// SetOnline records the platform-reported state. Subscribers fire exactly
// once per transition; setting the current state again is a no-op.
func (m *ManualMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// ProbeMonitor detects connectivity by periodically probing an HTTP
// endpoint. It is the server-side stand-in for a platform online signal.
type ProbeMonitor struct {
	*ManualMonitor

	url      string
	interval time.Duration
	client   *http.Client
}

// NewProbeMonitor probes url every interval. The monitor starts offline
// until the first successful probe.
func NewProbeMonitor(url string, interval time.Duration) *ProbeMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ProbeMonitor{
		ManualMonitor: NewManualMonitor(false),
		url:           url,
		interval:      interval,
		client:        &http.Client{Timeout: 5 * time.Second},
	}
}

// Run probes until the context is cancelled. The first probe happens
// immediately so subscribers do not wait a full interval after startup.
func (m *ProbeMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.SetOnline(m.probe(ctx))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *ProbeMonitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.url, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
