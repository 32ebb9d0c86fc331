package offsync

import "context"

// Store is the durable, namespaced queue behind the engine. Implementations
// live in the stores package; any backend with per-namespace isolation and
// auto-assigned integer identity can satisfy it.
//
// Delete must treat a missing id as success: retries re-adding a record can
// race a dispatch cycle that already delivered and removed it.
type Store interface {
	// Open idempotently ensures one region per namespace exists. Safe to
	// call once per process; concurrent opens must not corrupt the schema.
	Open(ctx context.Context, namespaces []string) error
	// Add persists the record, assigns a fresh id and returns it.
	Add(ctx context.Context, namespace string, rec Record) (int64, error)
	// ScanAll returns every pending record in store-native order.
	ScanAll(ctx context.Context, namespace string) ([]Record, error)
	// Delete removes the record. Deleting a missing id is a no-op.
	Delete(ctx context.Context, namespace string, id int64) error
}
