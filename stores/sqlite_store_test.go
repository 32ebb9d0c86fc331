package stores_test

import (
	"testing"

	"github.com/zhCaiCode/offsync/stores"
	"github.com/zhCaiCode/offsync/test/database"
)

func TestSQLiteStore(t *testing.T) {
	db := database.OpenSQLite(t)
	testStoreConformance(t, stores.NewSQLiteStore(db))
}

func TestSQLiteStorePrefix(t *testing.T) {
	db := database.OpenSQLite(t)
	store := stores.NewSQLiteStore(db, stores.WithSQLitePrefix("buffered"))
	testStoreConformance(t, store)

	var name string
	err := db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'buffered_events'`,
	).Scan(&name)
	if err != nil {
		t.Fatalf("prefixed table not found: %v", err)
	}
}
