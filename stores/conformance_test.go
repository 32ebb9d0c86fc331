package stores_test

import (
	"context"
	"testing"

	"github.com/zhCaiCode/offsync"
)

// testStoreConformance exercises the Store contract against a backend:
// idempotent Open, monotonically increasing ids, insertion-order scans,
// namespace isolation, and no-op deletes for unknown ids.
func testStoreConformance(t *testing.T, store offsync.Store) {
	t.Helper()
	ctx := context.Background()
	namespaces := []string{"events", "metrics"}

	if err := store.Open(ctx, namespaces); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if err := store.Open(ctx, namespaces); err != nil {
		t.Fatalf("second Open error: %v (Open must be idempotent)", err)
	}

	// Drain leftovers from previous runs against persistent backends.
	for _, ns := range namespaces {
		recs, err := store.ScanAll(ctx, ns)
		if err != nil {
			t.Fatalf("ScanAll %s error: %v", ns, err)
		}
		for _, rec := range recs {
			if err := store.Delete(ctx, ns, rec.ID); err != nil {
				t.Fatalf("cleanup Delete error: %v", err)
			}
		}
	}

	var ids []int64
	for _, sealed := range []string{"one", "two", "three"} {
		id, err := store.Add(ctx, "events", offsync.Record{
			Priority: len(sealed),
			Sealed:   []byte(sealed),
		})
		if err != nil {
			t.Fatalf("Add error: %v", err)
		}
		if id == 0 {
			t.Fatal("Add returned id 0")
		}
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("ids not increasing: %v", ids)
		}
	}

	if _, err := store.Add(ctx, "metrics", offsync.Record{Sealed: []byte("other")}); err != nil {
		t.Fatalf("Add to metrics error: %v", err)
	}

	recs, err := store.ScanAll(ctx, "events")
	if err != nil {
		t.Fatalf("ScanAll error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("ScanAll returned %d records, want 3", len(recs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if string(recs[i].Sealed) != want {
			t.Fatalf("record %d sealed = %q, want %q (insertion order)", i, recs[i].Sealed, want)
		}
		if recs[i].ID != ids[i] {
			t.Fatalf("record %d id = %d, want %d", i, recs[i].ID, ids[i])
		}
	}
	if recs[1].Priority != 3 {
		t.Fatalf("priority not round-tripped: %d", recs[1].Priority)
	}

	if err := store.Delete(ctx, "events", ids[1]); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := store.Delete(ctx, "events", ids[1]); err != nil {
		t.Fatalf("repeated Delete error: %v (must be a no-op)", err)
	}
	if err := store.Delete(ctx, "events", 99999); err != nil {
		t.Fatalf("Delete of unknown id error: %v (must be a no-op)", err)
	}

	recs, err = store.ScanAll(ctx, "events")
	if err != nil {
		t.Fatalf("ScanAll after delete error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ScanAll after delete returned %d records, want 2", len(recs))
	}

	other, err := store.ScanAll(ctx, "metrics")
	if err != nil {
		t.Fatalf("ScanAll metrics error: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("metrics has %d records, want 1 (namespaces must be isolated)", len(other))
	}
}
