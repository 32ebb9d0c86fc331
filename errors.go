package offsync

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPayload is returned when a record has no payload at all.
	ErrMissingPayload = errors.New("offsync: payload is required")

	// ErrUnknownNamespace is returned when an operation names a namespace
	// that was not declared in Options.Namespaces.
	ErrUnknownNamespace = errors.New("offsync: unknown namespace")

	// ErrCorruptData is returned when a sealed blob cannot be reversed by
	// the codec pipeline (truncated stream, wrong key, malformed JSON).
	ErrCorruptData = errors.New("offsync: corrupt sealed data")

	// ErrRetryExhausted marks a record dropped after the retry cap.
	ErrRetryExhausted = errors.New("offsync: retry attempts exhausted")
)

// StoreError wraps a failure of one store operation.
type StoreError struct {
	// Op is one of "open", "add", "scan", "delete".
	Op        string
	Namespace string
	ID        int64
	Err       error
}

func (e *StoreError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("offsync: store %s %s id=%d: %v", e.Op, e.Namespace, e.ID, e.Err)
	}
	return fmt.Sprintf("offsync: store %s %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SendError wraps a failed delivery attempt, either a transport error or
// a non-success response from the endpoint.
type SendError struct {
	// StatusCode is the HTTP status, or 0 for transport-level failures.
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("offsync: send failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("offsync: send failed: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

func storeErr(op, namespace string, id int64, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Namespace: namespace, ID: id, Err: err}
}
