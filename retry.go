package offsync

import (
	"context"
	"fmt"
	"time"
)

// scheduleRetry decides whether a failed record gets another attempt.
// Past the cap it is dropped and reported; otherwise it is re-enqueued
// with an incremented attempt counter after the backoff delay. The wait
// runs on its own goroutine so it blocks nothing but that record.
func (e *Engine) scheduleRetry(ctx context.Context, ns string, rec Record, sendErr error) {
	if rec.AttemptCount >= e.opts.MaxRetries {
		e.dropExhausted(ctx, ns, rec, sendErr)
		return
	}

	rec.AttemptCount++
	delay := e.opts.Backoff(rec.AttemptCount)
	e.opts.Logger.Warn(ctx, "record id=%d scheduled for attempt %d/%d in %s: %v",
		rec.ID, rec.AttemptCount, e.opts.MaxRetries, delay, sendErr)
	e.opts.Hooks.OnRetry(ctx, ns, rec, delay)

	e.retryWG.Add(1)
	go func() {
		defer e.retryWG.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			// The failed row is still in the store; the next sync cycle
			// picks it up with its old attempt count.
			return
		case <-timer.C:
		}
		e.requeue(ctx, ns, rec)
	}()
}

// requeue replaces the failed row with one carrying the incremented
// attempt count. The sealed payload is reused as is; re-encoding is not
// required. Add runs before Delete so a failure between the two leaves a
// duplicate rather than a lost record.
func (e *Engine) requeue(ctx context.Context, ns string, rec Record) {
	oldID := rec.ID
	rec.ID = 0
	rec.Payload = nil
	if _, err := e.store.Add(ctx, ns, rec); err != nil {
		e.opts.Logger.Error(ctx, "re-enqueue record (was id=%d): %v", oldID, err)
		e.opts.Hooks.OnStoreError(ctx, "add", ns, oldID, err)
		return
	}
	if err := e.store.Delete(ctx, ns, oldID); err != nil {
		e.opts.Logger.Error(ctx, "delete superseded record id=%d: %v", oldID, err)
		e.opts.Hooks.OnStoreError(ctx, "delete", ns, oldID, err)
	}
}

// dropExhausted removes a record that hit the retry cap and reports the
// terminal failure. No further automatic attempts happen for it.
func (e *Engine) dropExhausted(ctx context.Context, ns string, rec Record, sendErr error) {
	e.opts.Logger.Error(ctx, "record id=%d dropped after %d attempts: %v",
		rec.ID, rec.AttemptCount, sendErr)
	if err := e.store.Delete(ctx, ns, rec.ID); err != nil {
		e.opts.Hooks.OnStoreError(ctx, "delete", ns, rec.ID, err)
	}
	e.opts.Hooks.OnDrop(ctx, ns, rec, fmt.Errorf("%w: %v", ErrRetryExhausted, sendErr))
}
