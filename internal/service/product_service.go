package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/catalog/internal/cache"
	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/fop"
	"example.com/backstage/services/catalog/internal/repository"
	"example.com/backstage/services/catalog/internal/result"
	"example.com/backstage/services/catalog/internal/utils"
)

const productCacheTTL = 10 * time.Minute

func productCacheKey(id uuid.UUID) string {
	return utils.CacheKey("catalog", "product", id.String())
}

// CreateProduct creates a product aggregate with its linked categories and
// owned images/tags, and commits the state together with the raised events.
func (s *service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (result.Result[CreateProductResponse], error) {
	if errs := utils.ValidateStruct(cmd); errs != nil {
		return result.Invalid[CreateProductResponse](errs...), nil
	}

	categories, err := s.repo.FindCategoriesByIDs(ctx, cmd.CategoryIDs)
	if err != nil {
		return result.Result[CreateProductResponse]{}, err
	}
	if len(categories) != len(cmd.CategoryIDs) {
		return result.Invalid[CreateProductResponse](result.FieldError{
			Field:   "category_ids",
			Message: "one or more categories do not exist",
		}), nil
	}

	product, created := domain.NewProduct(
		cmd.Name,
		cmd.Description,
		cmd.Price,
		cmd.StockQuantity,
		cmd.SKU,
		cmd.Brand,
	)
	events := []domain.Event{created}
	if len(categories) > 0 {
		events = append(events, product.AddCategories(categories))
	}
	if len(cmd.ImageURLs) > 0 {
		events = append(events, product.AddImages(cmd.ImageURLs))
	}
	if len(cmd.Tags) > 0 {
		events = append(events, product.AddTags(cmd.Tags))
	}

	unit := s.newUnitOfWork()
	unit.RegisterNew(product, events...)
	if err := unit.Commit(ctx); err != nil {
		return result.Result[CreateProductResponse]{}, err
	}

	log.Info().Str("productID", product.ID.String()).Msg("Product created")
	return result.Success(CreateProductResponse{ID: product.ID}, "Product created successfully."), nil
}

// UpdateProduct replaces the product's scalar fields.
func (s *service) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (result.Result[UpdateProductResponse], error) {
	if errs := utils.ValidateStruct(cmd); errs != nil {
		return result.Invalid[UpdateProductResponse](errs...), nil
	}

	product, err := s.repo.FindProductByID(ctx, cmd.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFound[UpdateProductResponse](fmt.Sprintf("No product found by Id: %s", cmd.ID)), nil
	}
	if err != nil {
		return result.Result[UpdateProductResponse]{}, err
	}

	events := []domain.Event{product.Update(
		cmd.Name,
		cmd.Description,
		cmd.Price,
		cmd.StockQuantity,
		cmd.SKU,
		cmd.Brand,
	)}

	if cmd.CategoryIDs != nil {
		categoryEvents, invalid, err := s.syncCategories(ctx, product, cmd.CategoryIDs)
		if err != nil {
			return result.Result[UpdateProductResponse]{}, err
		}
		if invalid {
			return result.Invalid[UpdateProductResponse](result.FieldError{
				Field:   "category_ids",
				Message: "one or more categories do not exist",
			}), nil
		}
		events = append(events, categoryEvents...)
	}

	unit := s.newUnitOfWork()
	unit.RegisterDirty(product, events...)
	if err := unit.Commit(ctx); err != nil {
		return result.Result[UpdateProductResponse]{}, err
	}

	s.invalidateCache(ctx, productCacheKey(product.ID))
	return result.Success(UpdateProductResponse{ID: product.ID}, "Product updated successfully."), nil
}

// DeleteProduct soft-deletes a product. The row stays behind for audit and
// replay; it just disappears from every query-side read.
func (s *service) DeleteProduct(ctx context.Context, cmd DeleteProductCommand) (result.Result[DeleteProductResponse], error) {
	if errs := utils.ValidateStruct(cmd); errs != nil {
		return result.Invalid[DeleteProductResponse](errs...), nil
	}

	product, err := s.repo.FindProductByID(ctx, cmd.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFound[DeleteProductResponse](fmt.Sprintf("No product found by Id: %s", cmd.ID)), nil
	}
	if err != nil {
		return result.Result[DeleteProductResponse]{}, err
	}

	deleted, raised := product.Delete()
	if !raised {
		return result.NotFound[DeleteProductResponse](fmt.Sprintf("No product found by Id: %s", cmd.ID)), nil
	}

	unit := s.newUnitOfWork()
	unit.RegisterDirty(product, deleted)
	if err := unit.Commit(ctx); err != nil {
		return result.Result[DeleteProductResponse]{}, err
	}

	s.invalidateCache(ctx, productCacheKey(product.ID))
	log.Info().Str("productID", product.ID.String()).Msg("Product deleted")
	return result.Success(DeleteProductResponse{ID: product.ID}, "Product deleted successfully."), nil
}

// GetProductByID returns a single product, consulting the read cache first.
func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (result.Result[ProductResponse], error) {
	key := productCacheKey(id)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var response ProductResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return result.Success(response, "Product retrieved successfully."), nil
			}
		} else if !errors.Is(err, cache.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	product, err := s.repo.FindProductByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFound[ProductResponse](fmt.Sprintf("No product found by Id: %s", id)), nil
	}
	if err != nil {
		return result.Result[ProductResponse]{}, err
	}

	response := toProductResponse(*product)
	if s.cache != nil {
		if data, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, string(data), productCacheTTL); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to cache product")
			}
		}
	}
	return result.Success(response, "Product retrieved successfully."), nil
}

// ListProducts runs a filter-order-page query over the not-deleted products.
func (s *service) ListProducts(ctx context.Context, query ListQuery) (result.Result[ProductListResponse], error) {
	plan, err := fop.Build(repository.ProductFields, query.Filter, query.Order, query.PageNumber, query.PageSize)
	if err != nil {
		if res, err, ok := invalidFop[ProductListResponse](err); ok {
			return res, err
		}
		return result.Result[ProductListResponse]{}, err
	}

	products, total, err := s.repo.ListProducts(ctx, plan)
	if err != nil {
		return result.Result[ProductListResponse]{}, err
	}

	response := ProductListResponse{
		PagedInfo: fop.NewPagedInfo(plan.PageNumber, plan.PageSize, total),
		Products:  make([]ProductResponse, 0, len(products)),
	}
	for _, product := range products {
		response.Products = append(response.Products, toProductResponse(product))
	}
	return result.Success(response, "Products retrieved successfully."), nil
}

// syncCategories reconciles the product's category links against the desired
// set, raising one event per add/remove batch. The invalid return reports a
// reference to a missing or deleted category.
func (s *service) syncCategories(ctx context.Context, product *domain.Product, desired []uuid.UUID) ([]domain.Event, bool, error) {
	categories, err := s.repo.FindCategoriesByIDs(ctx, desired)
	if err != nil {
		return nil, false, err
	}
	if len(categories) != len(desired) {
		return nil, true, nil
	}

	current := make(map[uuid.UUID]domain.Category, len(product.Categories))
	for _, c := range product.Categories {
		current[c.ID] = c
	}
	wanted := make(map[uuid.UUID]bool, len(categories))

	var toAdd []domain.Category
	for _, c := range categories {
		wanted[c.ID] = true
		if _, ok := current[c.ID]; !ok {
			toAdd = append(toAdd, c)
		}
	}
	var toRemove []domain.Category
	for id, c := range current {
		if !wanted[id] {
			toRemove = append(toRemove, c)
		}
	}

	var events []domain.Event
	if len(toRemove) > 0 {
		events = append(events, product.RemoveCategories(toRemove))
	}
	if len(toAdd) > 0 {
		events = append(events, product.AddCategories(toAdd))
	}
	return events, false, nil
}

func (s *service) invalidateCache(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to invalidate cache entry")
	}
}

func toProductResponse(product domain.Product) ProductResponse {
	images := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		images = append(images, img.URL)
	}
	tags := make([]string, 0, len(product.Tags))
	for _, tag := range product.Tags {
		tags = append(tags, tag.Name)
	}
	categories := make([]CategoryResponse, 0, len(product.Categories))
	for _, category := range product.Categories {
		categories = append(categories, toCategoryResponse(category))
	}
	return ProductResponse{
		ID:            product.ID,
		Name:          product.Name,
		Description:   product.Description,
		Price:         product.Price,
		StockQuantity: product.StockQuantity,
		SKU:           product.SKU,
		Brand:         product.Brand,
		Images:        images,
		Tags:          tags,
		Categories:    categories,
	}
}
