package offsync

import (
	"context"
	"time"
)

// Hooks receives engine telemetry. Callers of Store never observe
// eventual sync outcomes directly; this is the surface that does.
// Implementations must be safe for concurrent use; retries fire from
// their own goroutines.
type Hooks interface {
	// OnDispatch fires once per batch handed to the sender.
	OnDispatch(ctx context.Context, namespace string, batchSize int)
	// OnSendSuccess fires after a batch is accepted by the endpoint.
	OnSendSuccess(ctx context.Context, namespace string, batch []Record)
	// OnSendFailure fires when a batch send fails.
	OnSendFailure(ctx context.Context, namespace string, batch []Record, err error)
	// OnRetry fires when a record is scheduled for another attempt.
	OnRetry(ctx context.Context, namespace string, rec Record, delay time.Duration)
	// OnDrop fires when a record is discarded: retry cap reached, or a
	// corrupt blob with DropCorrupt enabled.
	OnDrop(ctx context.Context, namespace string, rec Record, err error)
	// OnStoreError fires on non-fatal store failures during a cycle.
	OnStoreError(ctx context.Context, op string, namespace string, id int64, err error)
	// OnCycle fires at the end of each dispatch cycle for a namespace.
	OnCycle(ctx context.Context, namespace string, elapsed time.Duration)
}

// noopHooks ignores all telemetry.
type noopHooks struct{}

func (noopHooks) OnDispatch(context.Context, string, int)                        {}
func (noopHooks) OnSendSuccess(context.Context, string, []Record)                {}
func (noopHooks) OnSendFailure(context.Context, string, []Record, error)         {}
func (noopHooks) OnRetry(context.Context, string, Record, time.Duration)         {}
func (noopHooks) OnDrop(context.Context, string, Record, error)                  {}
func (noopHooks) OnStoreError(context.Context, string, string, int64, error)     {}
func (noopHooks) OnCycle(context.Context, string, time.Duration)                 {}
