package stores_test

import (
	"testing"

	"github.com/zhCaiCode/offsync/stores"
	"github.com/zhCaiCode/offsync/test/database"
)

func TestPostgresStore(t *testing.T) {
	db := database.OpenPostgres(t)
	testStoreConformance(t, stores.NewPostgresStore(db))
}
