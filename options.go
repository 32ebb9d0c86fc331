package offsync

import "time"

// Options configure Engine behaviour and tuning knobs.
type Options struct {
	// Namespaces declares the logical partitions of the store. The store
	// schema is created once for all of them at engine construction.
	Namespaces []string
	// DefaultNamespace is used when Store is called with an empty
	// namespace. Defaults to the first declared namespace.
	DefaultNamespace string
	// SyncURL is the remote endpoint. Used to build the default
	// HTTPSender when no Sender is injected.
	SyncURL string
	// MaxRetries caps delivery attempts per record before it is dropped.
	MaxRetries int
	// RetryDelay is the wait before a failed record is re-enqueued.
	RetryDelay time.Duration
	// BatchSize bounds how many records one delivery attempt carries.
	BatchSize int
	// EncryptionKey enables payload encryption at rest. Empty disables it.
	EncryptionKey string
	// DropCorrupt deletes records whose sealed blob cannot be decoded.
	// When false (the default) corrupt records are skipped and left in
	// the store for inspection.
	DropCorrupt bool
	// Backoff computes the retry delay per attempt. Defaults to
	// Constant(RetryDelay); there is no exponential growth unless the
	// host asks for it.
	Backoff Backoff
	// Logger emits engine activity logs.
	Logger Logger
	// Hooks receives telemetry about dispatch outcomes.
	Hooks Hooks
	// Now supplies the current time; override for tests.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if len(o.Namespaces) == 0 {
		o.Namespaces = []string{"default"}
	}
	if o.DefaultNamespace == "" {
		o.DefaultNamespace = o.Namespaces[0]
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 5 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Backoff == nil {
		o.Backoff = Constant(o.RetryDelay)
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
	if o.Hooks == nil {
		o.Hooks = noopHooks{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}
