package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/backstage/services/catalog/internal/cache"
	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/eventstore"
	"example.com/backstage/services/catalog/internal/models"
	"example.com/backstage/services/catalog/internal/repository"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Category{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.ProductTag{},
		&models.EventRecord{},
	))

	svc := New(db, repository.New(db), eventstore.New(db), nil)
	return svc, db
}

func newTestServiceWithCache(t *testing.T, c cache.Client) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Category{},
		&domain.Product{},
		&domain.ProductImage{},
		&domain.ProductTag{},
		&models.EventRecord{},
	))
	return New(db, repository.New(db), eventstore.New(db), c)
}

// mapCache is an in-memory cache.Client reporting misses with cache.Nil.
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]string{}}
}

func (m *mapCache) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.entries[key]
	if !ok {
		return "", cache.Nil
	}
	return value, nil
}

func (m *mapCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *mapCache) Close() error { return nil }

// downCache fails every operation, as an unreachable Redis would.
type downCache struct{}

func (downCache) Get(ctx context.Context, key string) (string, error) {
	return "", errors.New("connection refused")
}

func (downCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return errors.New("connection refused")
}

func (downCache) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

func (downCache) Close() error { return nil }

func createCategory(t *testing.T, svc Service, name string) uuid.UUID {
	t.Helper()
	res, err := svc.CreateCategory(context.Background(), CreateCategoryCommand{
		Name:        name,
		Description: name + " category",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	return res.Value().ID
}

func TestCategoryLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	id := createCategory(t, svc, "Tools")

	got, err := svc.GetCategoryByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.IsSuccess())
	require.Equal(t, "Tools", got.Value().Name)

	updated, err := svc.UpdateCategory(ctx, UpdateCategoryCommand{
		ID:          id,
		Name:        "Power Tools",
		Description: "Powered tools",
	})
	require.NoError(t, err)
	require.True(t, updated.IsSuccess())

	deleted, err := svc.DeleteCategory(ctx, DeleteCategoryCommand{ID: id})
	require.NoError(t, err)
	require.True(t, deleted.IsSuccess())

	got, err = svc.GetCategoryByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.IsNotFound())

	// The full lifecycle is on the event log.
	history, err := svc.AggregateHistory(ctx, id)
	require.NoError(t, err)
	require.True(t, history.IsSuccess())
	require.Len(t, history.Value(), 3)
	require.Equal(t, domain.CategoryCreated, history.Value()[0].MessageType)
	require.Equal(t, domain.CategoryUpdated, history.Value()[1].MessageType)
	require.Equal(t, domain.CategoryDeleted, history.Value()[2].MessageType)
}

func TestCreateCategoryRejectsMissingName(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.CreateCategory(context.Background(), CreateCategoryCommand{})
	require.NoError(t, err)
	require.True(t, res.IsInvalid())
	require.Equal(t, "Name", res.ValidationErrors()[0].Field)
}

func TestCreateProductWithCollections(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	categoryID := createCategory(t, svc, "Tools")

	res, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:          "Hammer",
		Description:   "Claw hammer",
		Price:         19.90,
		StockQuantity: 5,
		SKU:           "HAM-001",
		Brand:         "Acme",
		CategoryIDs:   []uuid.UUID{categoryID},
		ImageURLs:     []string{"https://img.example.com/hammer.png"},
		Tags:          []string{"diy", "steel"},
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	got, err := svc.GetProductByID(ctx, res.Value().ID)
	require.NoError(t, err)
	require.True(t, got.IsSuccess())

	product := got.Value()
	require.Equal(t, "Hammer", product.Name)
	require.Equal(t, []string{"https://img.example.com/hammer.png"}, product.Images)
	require.Equal(t, []string{"diy", "steel"}, product.Tags)
	require.Len(t, product.Categories, 1)
	require.Equal(t, "Tools", product.Categories[0].Name)

	// State and events committed together.
	var recordCount int64
	require.NoError(t, db.Model(&models.EventRecord{}).
		Where("aggregate_id = ?", res.Value().ID).
		Count(&recordCount).Error)
	require.Equal(t, int64(4), recordCount)
}

func TestCreateProductValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	res, err := svc.CreateProduct(ctx, CreateProductCommand{
		Price: -1,
		SKU:   "HAM-001",
	})
	require.NoError(t, err)
	require.True(t, res.IsInvalid())
	require.Len(t, res.ValidationErrors(), 2)

	// Nothing was persisted for the rejected command.
	var productCount, recordCount int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&productCount).Error)
	require.NoError(t, db.Model(&models.EventRecord{}).Count(&recordCount).Error)
	require.Zero(t, productCount)
	require.Zero(t, recordCount)
}

func TestCreateProductRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:        "Hammer",
		Price:       19.90,
		SKU:         "HAM-001",
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	require.True(t, res.IsInvalid())
	require.Equal(t, "category_ids", res.ValidationErrors()[0].Field)
}

func TestUpdateProductReplacesCategoryLinks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	toolsID := createCategory(t, svc, "Tools")
	gardenID := createCategory(t, svc, "Garden")

	created, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:        "Hammer",
		Price:       19.90,
		SKU:         "HAM-001",
		CategoryIDs: []uuid.UUID{toolsID},
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())

	res, err := svc.UpdateProduct(ctx, UpdateProductCommand{
		ID:          created.Value().ID,
		Name:        "Hammer",
		Price:       19.90,
		SKU:         "HAM-001",
		CategoryIDs: []uuid.UUID{gardenID},
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	got, err := svc.GetProductByID(ctx, created.Value().ID)
	require.NoError(t, err)
	require.True(t, got.IsSuccess())
	require.Len(t, got.Value().Categories, 1)
	require.Equal(t, "Garden", got.Value().Categories[0].Name)
}

func TestUpdateProductRejectsUnknownCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:  "Hammer",
		Price: 19.90,
		SKU:   "HAM-001",
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())

	res, err := svc.UpdateProduct(ctx, UpdateProductCommand{
		ID:          created.Value().ID,
		Name:        "Hammer",
		Price:       19.90,
		SKU:         "HAM-001",
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	require.True(t, res.IsInvalid())
	require.Equal(t, "category_ids", res.ValidationErrors()[0].Field)
}

func TestUpdateProductNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.UpdateProduct(context.Background(), UpdateProductCommand{
		ID:    uuid.New(),
		Name:  "Hammer",
		Price: 19.90,
		SKU:   "HAM-001",
	})
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
}

func TestDeleteProductThenGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:  "Hammer",
		Price: 19.90,
		SKU:   "HAM-001",
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())

	deleted, err := svc.DeleteProduct(ctx, DeleteProductCommand{ID: created.Value().ID})
	require.NoError(t, err)
	require.True(t, deleted.IsSuccess())

	got, err := svc.GetProductByID(ctx, created.Value().ID)
	require.NoError(t, err)
	require.True(t, got.IsNotFound())

	// A second delete reports not found instead of raising another event.
	deleted, err = svc.DeleteProduct(ctx, DeleteProductCommand{ID: created.Value().ID})
	require.NoError(t, err)
	require.True(t, deleted.IsNotFound())
}

func TestGetProductByIDFillsCacheOnMiss(t *testing.T) {
	c := newMapCache()
	svc := newTestServiceWithCache(t, c)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:  "Hammer",
		Price: 19.90,
		SKU:   "HAM-001",
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())
	id := created.Value().ID

	// First read misses and populates the cache.
	got, err := svc.GetProductByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.IsSuccess())
	require.Len(t, c.entries, 1)

	// Second read is served from the cache entry.
	c.entries[productCacheKey(id)] = `{"id":"` + id.String() + `","name":"Cached Hammer"}`
	got, err = svc.GetProductByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.IsSuccess())
	require.Equal(t, "Cached Hammer", got.Value().Name)
}

func TestGetProductByIDSurvivesCacheFailure(t *testing.T) {
	svc := newTestServiceWithCache(t, downCache{})
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:  "Hammer",
		Price: 19.90,
		SKU:   "HAM-001",
	})
	require.NoError(t, err)
	require.True(t, created.IsSuccess())

	// A broken cache degrades to database reads instead of failing the call.
	got, err := svc.GetProductByID(ctx, created.Value().ID)
	require.NoError(t, err)
	require.True(t, got.IsSuccess())
	require.Equal(t, "Hammer", got.Value().Name)
}

func TestListProductsFilterOrderPage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	prices := map[string]float64{
		"Chisel": 50, "Drill": 120, "Saw": 130, "Grinder": 140, "Pliers": 90,
	}
	for name, price := range prices {
		res, err := svc.CreateProduct(ctx, CreateProductCommand{
			Name:  name,
			Price: price,
			SKU:   "SKU-" + name,
		})
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
	}

	res, err := svc.ListProducts(ctx, ListQuery{
		Filter:     "Price > 100",
		Order:      "Price:desc",
		PageNumber: 1,
		PageSize:   2,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	list := res.Value()
	require.Equal(t, int64(3), list.PagedInfo.TotalCount)
	require.Equal(t, 2, list.PagedInfo.TotalPages)
	require.Len(t, list.Products, 2)
	require.Equal(t, "Grinder", list.Products[0].Name)
	require.Equal(t, "Saw", list.Products[1].Name)

	// Requesting past the last occupied page still succeeds with the real
	// count and an empty page.
	res, err = svc.ListProducts(ctx, ListQuery{
		Filter:     "Price > 100",
		Order:      "Price:desc",
		PageNumber: 5,
		PageSize:   2,
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	list = res.Value()
	require.Equal(t, int64(3), list.PagedInfo.TotalCount)
	require.Equal(t, 2, list.PagedInfo.TotalPages)
	require.Empty(t, list.Products)
}

func TestListProductsRejectsBadQuery(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.ListProducts(ctx, ListQuery{
		Filter:     `Secret = "x"`,
		PageNumber: 1,
		PageSize:   10,
	})
	require.NoError(t, err)
	require.True(t, res.IsInvalid())

	res, err = svc.ListProducts(ctx, ListQuery{PageNumber: 0, PageSize: 10})
	require.NoError(t, err)
	require.True(t, res.IsInvalid())
	require.Equal(t, "pageNumber", res.ValidationErrors()[0].Field)
}

func TestAggregateHistoryUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.AggregateHistory(context.Background(), uuid.New())
	require.NoError(t, err)
	require.True(t, res.IsNotFound())
}
