package offsync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Engine is the offline durability-and-sync façade. Callers hand it
// records; when the endpoint is reachable they go straight out, otherwise
// they are sealed, persisted, and flushed on the next online edge.
type Engine struct {
	store   Store
	sender  Sender
	monitor Monitor
	codec   *Codec
	opts    Options

	namespaces map[string]struct{}
	// inflight holds one slot per namespace so at most one dispatch
	// cycle per namespace runs at a time.
	inflight map[string]chan struct{}

	retryWG sync.WaitGroup
}

// StoreResult reports what happened to a record handed to Store.
type StoreResult struct {
	// Delivered is true when the record was sent directly (online path)
	// and never entered the store.
	Delivered bool
	// ID is the store-assigned identifier (offline path only).
	ID int64
}

// NewEngine wires a Store, Sender and Monitor with the provided options
// and idempotently creates the store schema for all declared namespaces.
// A nil sender is allowed when Options.SyncURL is set; an HTTPSender
// targeting it is built instead.
func NewEngine(ctx context.Context, store Store, sender Sender, monitor Monitor, opts Options) (*Engine, error) {
	opts.setDefaults()
	if store == nil {
		return nil, errors.New("offsync: store is required")
	}
	if monitor == nil {
		return nil, errors.New("offsync: monitor is required")
	}
	if sender == nil {
		if opts.SyncURL == "" {
			return nil, errors.New("offsync: either a sender or a sync URL is required")
		}
		sender = NewHTTPSender(opts.SyncURL)
	}

	codec, err := NewCodec(opts.EncryptionKey)
	if err != nil {
		return nil, err
	}

	if err := store.Open(ctx, opts.Namespaces); err != nil {
		return nil, storeErr("open", "", 0, err)
	}

	e := &Engine{
		store:      store,
		sender:     sender,
		monitor:    monitor,
		codec:      codec,
		opts:       opts,
		namespaces: make(map[string]struct{}, len(opts.Namespaces)),
		inflight:   make(map[string]chan struct{}, len(opts.Namespaces)),
	}
	for _, ns := range opts.Namespaces {
		e.namespaces[ns] = struct{}{}
		e.inflight[ns] = make(chan struct{}, 1)
	}
	return e, nil
}

// Store delivers the record immediately when online, or seals and
// persists it when offline. The connectivity branch is evaluated once at
// call time; a flip mid-send is not retried here, because online-sent
// records never enter the store and so are invisible to sync cycles.
func (e *Engine) Store(ctx context.Context, namespace string, rec Record) (StoreResult, error) {
	ns, err := e.resolve(namespace)
	if err != nil {
		return StoreResult{}, err
	}
	if err := rec.validate(); err != nil {
		return StoreResult{}, err
	}

	if e.monitor.Online() {
		if err := e.sender.Send(ctx, rec); err != nil {
			return StoreResult{}, err
		}
		return StoreResult{Delivered: true}, nil
	}

	rec.AttemptCount = 0
	if err := e.codec.seal(&rec); err != nil {
		return StoreResult{}, err
	}
	id, err := e.store.Add(ctx, ns, rec)
	if err != nil {
		return StoreResult{}, storeErr("add", ns, 0, err)
	}
	return StoreResult{ID: id}, nil
}

// Pending reports how many records are queued in a namespace.
func (e *Engine) Pending(ctx context.Context, namespace string) (int, error) {
	ns, err := e.resolve(namespace)
	if err != nil {
		return 0, err
	}
	recs, err := e.store.ScanAll(ctx, ns)
	if err != nil {
		return 0, storeErr("scan", ns, 0, err)
	}
	return len(recs), nil
}

// Run drives connectivity-triggered sync until the context is cancelled.
// It syncs once at startup if already online, then once per
// offline->online edge reported by the monitor.
func (e *Engine) Run(ctx context.Context) error {
	events := make(chan bool, 8)
	cancel := e.monitor.Subscribe(func(online bool) {
		select {
		case events <- online:
		default:
		}
	})
	defer cancel()

	if e.monitor.Online() {
		if err := e.SyncAll(ctx); err != nil {
			e.opts.Logger.Error(ctx, "startup sync: %v", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			e.retryWG.Wait()
			return ctx.Err()
		case online := <-events:
			if !online {
				continue
			}
			if err := e.SyncAll(ctx); err != nil {
				e.opts.Logger.Error(ctx, "sync on reconnect: %v", err)
			}
		}
	}
}

// SyncAll dispatches every declared namespace in declaration order. A
// failing namespace does not stop the others; errors are joined.
func (e *Engine) SyncAll(ctx context.Context) error {
	var errs []error
	for _, ns := range e.opts.Namespaces {
		if err := e.syncNamespace(ctx, ns); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sync dispatches a single namespace on demand.
func (e *Engine) Sync(ctx context.Context, namespace string) error {
	ns, err := e.resolve(namespace)
	if err != nil {
		return err
	}
	return e.syncNamespace(ctx, ns)
}

// syncNamespace runs one dispatch cycle: scan, order, batch, send.
// Records captured after the scan wait for the next trigger.
func (e *Engine) syncNamespace(ctx context.Context, ns string) error {
	if !e.monitor.Online() {
		return nil
	}
	select {
	case e.inflight[ns] <- struct{}{}:
	default:
		// A cycle is already draining this namespace.
		return nil
	}
	defer func() { <-e.inflight[ns] }()

	cycle := cycleID()
	start := e.opts.Now()

	pending, err := e.store.ScanAll(ctx, ns)
	if err != nil {
		return storeErr("scan", ns, 0, err)
	}
	if len(pending) == 0 {
		return nil
	}
	e.opts.Logger.Info(ctx, "%s: namespace %q has %d pending records", cycle, ns, len(pending))

	// Higher priority first; ties keep store-native order. Stability is
	// a correctness property here, callers rely on FIFO within priority.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Priority > pending[j].Priority
	})

	for from := 0; from < len(pending); from += e.opts.BatchSize {
		to := from + e.opts.BatchSize
		if to > len(pending) {
			to = len(pending)
		}
		e.dispatchBatch(ctx, ns, cycle, pending[from:to])
	}

	e.opts.Hooks.OnCycle(ctx, ns, e.opts.Now().Sub(start))
	return nil
}

// dispatchBatch decodes and sends one batch. A failed batch is routed to
// the retry path per record; it never aborts the remaining batches.
func (e *Engine) dispatchBatch(ctx context.Context, ns, cycle string, raw []Record) {
	batch := make([]Record, 0, len(raw))
	for _, rec := range raw {
		if err := e.codec.unseal(&rec); err != nil {
			e.discardCorrupt(ctx, ns, rec, err)
			continue
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return
	}

	e.opts.Hooks.OnDispatch(ctx, ns, len(batch))
	if err := e.sender.SendBatch(ctx, batch); err != nil {
		e.opts.Logger.Warn(ctx, "%s: batch of %d failed: %v", cycle, len(batch), err)
		e.opts.Hooks.OnSendFailure(ctx, ns, batch, err)
		for _, rec := range batch {
			e.scheduleRetry(ctx, ns, rec, err)
		}
		return
	}

	e.opts.Hooks.OnSendSuccess(ctx, ns, batch)
	for _, rec := range batch {
		// Best effort: the batch is already delivered, so a failed
		// delete means redelivery later, not data loss.
		if err := e.store.Delete(ctx, ns, rec.ID); err != nil {
			e.opts.Logger.Error(ctx, "%s: delete sent record id=%d: %v", cycle, rec.ID, err)
			e.opts.Hooks.OnStoreError(ctx, "delete", ns, rec.ID, err)
		}
	}
}

// discardCorrupt applies the corrupt-record policy: leave in store for
// inspection by default, delete when DropCorrupt is set.
func (e *Engine) discardCorrupt(ctx context.Context, ns string, rec Record, decodeErr error) {
	if !e.opts.DropCorrupt {
		e.opts.Logger.Error(ctx, "record id=%d in %q is corrupt, leaving in store: %v", rec.ID, ns, decodeErr)
		return
	}
	e.opts.Logger.Error(ctx, "record id=%d in %q is corrupt, dropping: %v", rec.ID, ns, decodeErr)
	if err := e.store.Delete(ctx, ns, rec.ID); err != nil {
		e.opts.Hooks.OnStoreError(ctx, "delete", ns, rec.ID, err)
	}
	e.opts.Hooks.OnDrop(ctx, ns, rec, decodeErr)
}

func (e *Engine) resolve(namespace string) (string, error) {
	if namespace == "" {
		namespace = e.opts.DefaultNamespace
	}
	if _, ok := e.namespaces[namespace]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownNamespace, namespace)
	}
	return namespace, nil
}
