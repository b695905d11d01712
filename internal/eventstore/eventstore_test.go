package eventstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.EventRecord{}))
	return db
}

func TestAppendAndHistoryKeepOrder(t *testing.T) {
	db := newTestDB(t)
	store := New(db)
	ctx := context.Background()

	product, created := domain.NewProduct("Hammer", "", 19.90, 5, "HAM-001", "Acme")
	updated := product.Update("Sledgehammer", "", 49.90, 2, "HAM-002", "Acme")

	require.NoError(t, store.Append(ctx, db, []domain.Event{created, updated}))

	records, err := store.History(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, domain.ProductCreated, records[0].MessageType)
	require.Equal(t, domain.ProductUpdated, records[1].MessageType)
	require.Equal(t, created.EventID, records[0].EventID)
	require.Contains(t, records[0].Data, `"name":"Hammer"`)
}

func TestUnprocessedAndMarkProcessed(t *testing.T) {
	db := newTestDB(t)
	store := New(db)
	ctx := context.Background()

	product, created := domain.NewProduct("Hammer", "", 19.90, 5, "HAM-001", "Acme")
	require.NoError(t, store.Append(ctx, db, []domain.Event{created}))

	pending, err := store.Unprocessed(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, created.EventID, pending[0].EventID)

	require.NoError(t, store.MarkProcessed(ctx, created.EventID))

	pending, err = store.Unprocessed(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	// Processed records stay on the history.
	records, err := store.History(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Processed)
}

func TestUnprocessedHonorsLimit(t *testing.T) {
	db := newTestDB(t)
	store := New(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, created := domain.NewCategory(fmt.Sprintf("C%d", i), "")
		require.NoError(t, store.Append(ctx, db, []domain.Event{created}))
	}

	pending, err := store.Unprocessed(ctx, 3)
	require.NoError(t, err)
	require.Len(t, pending, 3)
}
