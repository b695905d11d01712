package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/fop"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *domain.Product {
	t.Helper()
	product, _ := domain.NewProduct(name, "", price, stock, "SKU-"+name, "Acme")
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestFindProductByIDExcludesSoftDeleted(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Hammer", 19.90, 5)

	found, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, product.ID, found.ID)

	require.NoError(t, db.Model(product).Update("is_deleted", true).Error)

	_, err = repo.FindProductByID(ctx, product.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFindProductByIDUnknown(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)

	_, err := repo.FindProductByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListProductsFilterOrderPage(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)
	ctx := context.Background()

	seedProduct(t, db, "Chisel", 50, 1)
	seedProduct(t, db, "Drill", 120, 2)
	seedProduct(t, db, "Saw", 130, 3)
	seedProduct(t, db, "Grinder", 140, 4)
	seedProduct(t, db, "Pliers", 90, 5)

	query, err := fop.Build(ProductFields, "Price > 100", "Price:desc", 1, 2)
	require.NoError(t, err)

	products, total, err := repo.ListProducts(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, products, 2)
	require.Equal(t, "Grinder", products[0].Name)
	require.Equal(t, "Saw", products[1].Name)

	// Second page holds the remainder.
	query, err = fop.Build(ProductFields, "Price > 100", "Price:desc", 2, 2)
	require.NoError(t, err)

	products, total, err = repo.ListProducts(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, products, 1)
	require.Equal(t, "Drill", products[0].Name)

	// A page past the end is empty but still carries the full count.
	query, err = fop.Build(ProductFields, "Price > 100", "Price:desc", 5, 2)
	require.NoError(t, err)

	products, total, err = repo.ListProducts(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Empty(t, products)
}

func TestListProductsExcludesSoftDeletedFromCountAndPage(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)
	ctx := context.Background()

	seedProduct(t, db, "Hammer", 20, 1)
	deleted := seedProduct(t, db, "Saw", 30, 1)
	require.NoError(t, db.Model(deleted).Update("is_deleted", true).Error)

	query, err := fop.Build(ProductFields, "", "", 1, 10)
	require.NoError(t, err)

	products, total, err := repo.ListProducts(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	require.Equal(t, "Hammer", products[0].Name)
}

func TestListProductsPagingCoversAllRowsOnce(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		seedProduct(t, db, fmt.Sprintf("P%d", i), 10, 1)
	}

	seen := make(map[uuid.UUID]bool)
	for page := 1; page <= 3; page++ {
		query, err := fop.Build(ProductFields, "", "", page, 3)
		require.NoError(t, err)

		products, total, err := repo.ListProducts(ctx, query)
		require.NoError(t, err)
		require.Equal(t, int64(7), total)

		for _, p := range products {
			require.False(t, seen[p.ID], "row %s returned twice", p.Name)
			seen[p.ID] = true
		}
	}
	require.Len(t, seen, 7)
}

func TestFindCategoriesByIDsSkipsDeleted(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)
	ctx := context.Background()

	tools, _ := domain.NewCategory("Tools", "")
	garden, _ := domain.NewCategory("Garden", "")
	require.NoError(t, db.Create(tools).Error)
	require.NoError(t, db.Create(garden).Error)
	require.NoError(t, db.Model(garden).Update("is_deleted", true).Error)

	categories, err := repo.FindCategoriesByIDs(ctx, []uuid.UUID{tools.ID, garden.ID})
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, tools.ID, categories[0].ID)

	categories, err = repo.FindCategoriesByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, categories)
}

func TestListCategories(t *testing.T) {
	db := newTestDB(t)
	repo := New(db)
	ctx := context.Background()

	for _, name := range []string{"Tools", "Garden", "Paint"} {
		category, _ := domain.NewCategory(name, "")
		require.NoError(t, db.Create(category).Error)
	}

	query, err := fop.Build(CategoryFields, `Name = "Tools"`, "Name:asc", 1, 10)
	require.NoError(t, err)

	categories, total, err := repo.ListCategories(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, categories, 1)
	require.Equal(t, "Tools", categories[0].Name)
}
