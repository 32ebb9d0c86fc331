// Package offsync buffers records durably while a remote endpoint is
// unreachable and flushes them, priority first, once connectivity resumes.
package offsync

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Record is a unit of work queued for delivery.
//
// Payload carries the application data and is never persisted in
// plaintext: before a record enters a Store the payload is run through
// the codec pipeline and only the resulting Sealed blob is written.
type Record struct {
	// ID is assigned by the store on first persistence. Zero before that.
	ID int64
	// Priority orders dispatch; higher sends first. Immutable after creation.
	Priority int
	// AttemptCount is how many delivery attempts have failed so far.
	AttemptCount int
	// Payload is the application data as JSON. Present in memory only.
	Payload json.RawMessage
	// Sealed is the codec output (compressed, optionally encrypted).
	Sealed []byte
}

// NewRecord wraps an application value into a Record with default
// priority. The value is marshaled to JSON immediately so that encoding
// errors surface at enqueue time, not during dispatch.
func NewRecord(body any) (Record, error) {
	if body == nil {
		return Record{}, ErrMissingPayload
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Record{}, fmt.Errorf("offsync: marshal payload: %w", err)
	}
	return Record{Payload: payload}, nil
}

// WithPriority returns a copy of the record with the given priority.
func (r Record) WithPriority(p int) Record {
	r.Priority = p
	return r
}

// validate ensures the minimal contract for queueing or sending.
func (r Record) validate() error {
	if len(r.Payload) == 0 && len(r.Sealed) == 0 {
		return ErrMissingPayload
	}
	return nil
}

// Decode unmarshals the payload into the provided destination.
func (r Record) Decode(dest any) error {
	if len(r.Payload) == 0 {
		return errors.New("offsync: record payload is not decoded")
	}
	return json.Unmarshal(r.Payload, dest)
}
