package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/fop"
)

var (
	// ErrNotFound signals that the requested aggregate does not exist or
	// is soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a stale-state commit: another writer committed
	// the aggregate since it was loaded.
	ErrConflict = errors.New("concurrent modification conflict")
)

// ProductFields is the whitelist of product fields accepted by the
// filter/order grammar. The names are the external contract; the columns
// are what the engine is allowed to touch.
var ProductFields = fop.Fields{
	"Name":          {Column: "name", Type: fop.String},
	"Description":   {Column: "description", Type: fop.String},
	"Price":         {Column: "price", Type: fop.Float},
	"StockQuantity": {Column: "stock_quantity", Type: fop.Int},
	"SKU":           {Column: "sku", Type: fop.String},
	"Brand":         {Column: "brand", Type: fop.String},
}

// CategoryFields is the whitelist of category fields.
var CategoryFields = fop.Fields{
	"Name":        {Column: "name", Type: fop.String},
	"Description": {Column: "description", Type: fop.String},
}

// Repository provides read access to catalog aggregates. Every read
// excludes soft-deleted rows here, at a single layer, rather than in each
// caller.
type Repository interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, query *fop.Query) ([]domain.Product, int64, error)
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error)
	ListCategories(ctx context.Context, query *fop.Query) ([]domain.Category, int64, error)
}

type repo struct {
	db *gorm.DB
}

// New creates a repository backed by the given database handle.
func New(db *gorm.DB) Repository {
	return &repo{db: db}
}

// notDeleted is the query-side soft-delete invariant: no read returns a
// soft-deleted row.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// FindProductByID loads a product with its owned and linked collections.
func (r *repo) FindProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Scopes(notDeleted).
		Preload("Images").
		Preload("Tags").
		Preload("Categories", "is_deleted = ?", false).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load product")
	}
	return &product, nil
}

// ListProducts applies a filter-order-page plan. The matching count and the
// page are read inside one transaction so they describe the same snapshot.
func (r *repo) ListProducts(ctx context.Context, query *fop.Query) ([]domain.Product, int64, error) {
	var (
		products []domain.Product
		total    int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := query.Scope(tx.Model(&domain.Product{}).Scopes(notDeleted))
		if err := base.Count(&total).Error; err != nil {
			return errors.Wrap(err, "failed to count products")
		}
		page := query.Page(tx.Scopes(notDeleted)).
			Preload("Images").
			Preload("Tags").
			Preload("Categories", "is_deleted = ?", false)
		if err := page.Find(&products).Error; err != nil {
			return errors.Wrap(err, "failed to list products")
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindCategoryByID loads a single category.
func (r *repo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).
		Scopes(notDeleted).
		First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load category")
	}
	return &category, nil
}

// FindCategoriesByIDs loads the not-deleted categories among the given ids.
// Callers compare lengths to detect references to missing categories.
func (r *repo) FindCategoriesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []domain.Category
	err := r.db.WithContext(ctx).
		Scopes(notDeleted).
		Where("id IN ?", ids).
		Find(&categories).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load categories")
	}
	return categories, nil
}

// ListCategories applies a filter-order-page plan to categories.
func (r *repo) ListCategories(ctx context.Context, query *fop.Query) ([]domain.Category, int64, error) {
	var (
		categories []domain.Category
		total      int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		base := query.Scope(tx.Model(&domain.Category{}).Scopes(notDeleted))
		if err := base.Count(&total).Error; err != nil {
			return errors.Wrap(err, "failed to count categories")
		}
		if err := query.Page(tx.Scopes(notDeleted)).Find(&categories).Error; err != nil {
			return errors.Wrap(err, "failed to list categories")
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}
