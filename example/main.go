package main

import (
	"context"
	"log"
	"time"

	"github.com/zhCaiCode/offsync"
	"github.com/zhCaiCode/offsync/stores"
)

// mockSender prints records instead of posting them to an endpoint.
type mockSender struct{}

func (mockSender) Send(_ context.Context, rec offsync.Record) error {
	log.Printf("send id=%d priority=%d payload=%s", rec.ID, rec.Priority, rec.Payload)
	return nil
}

func (mockSender) SendBatch(_ context.Context, batch []offsync.Record) error {
	for _, rec := range batch {
		log.Printf("send (batch) id=%d priority=%d payload=%s", rec.ID, rec.Priority, rec.Payload)
	}
	return nil
}

func main() {
	ctx := context.Background()

	store, err := stores.OpenBadgerStore("")
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = store.Close()
	}()

	monitor := offsync.NewManualMonitor(false)

	engine, err := offsync.NewEngine(ctx, store, mockSender{}, monitor, offsync.Options{
		Namespaces: []string{"events"},
	})
	if err != nil {
		log.Fatal(err)
	}

	for i, priority := range []int{1, 5, 3} {
		rec, err := offsync.NewRecord(map[string]any{
			"message": "hello, offsync!",
			"seq":     i,
			"ts":      time.Now().UTC(),
		})
		if err != nil {
			log.Fatal(err)
		}
		res, err := engine.Store(ctx, "events", rec.WithPriority(priority))
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("buffered id=%d priority=%d", res.ID, priority)
	}

	// Simulate connectivity coming back: the highest priority record
	// goes out first.
	monitor.SetOnline(true)
	if err := engine.SyncAll(ctx); err != nil {
		log.Fatal(err)
	}
}
