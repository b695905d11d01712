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

const categoryCacheTTL = 10 * time.Minute

func categoryCacheKey(id uuid.UUID) string {
	return utils.CacheKey("catalog", "category", id.String())
}

// CreateCategory creates a category aggregate and commits it with its
// Created event.
func (s *service) CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (result.Result[CreateCategoryResponse], error) {
	if errs := utils.ValidateStruct(cmd); errs != nil {
		return result.Invalid[CreateCategoryResponse](errs...), nil
	}

	category, created := domain.NewCategory(cmd.Name, cmd.Description)

	unit := s.newUnitOfWork()
	unit.RegisterNew(category, created)
	if err := unit.Commit(ctx); err != nil {
		return result.Result[CreateCategoryResponse]{}, err
	}

	log.Info().Str("categoryID", category.ID.String()).Msg("Category created")
	return result.Success(CreateCategoryResponse{ID: category.ID}, "Category created successfully."), nil
}

// UpdateCategory replaces the category fields.
func (s *service) UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (result.Result[UpdateCategoryResponse], error) {
	if errs := utils.ValidateStruct(cmd); errs != nil {
		return result.Invalid[UpdateCategoryResponse](errs...), nil
	}

	category, err := s.repo.FindCategoryByID(ctx, cmd.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFound[UpdateCategoryResponse](fmt.Sprintf("No category found by Id: %s", cmd.ID)), nil
	}
	if err != nil {
		return result.Result[UpdateCategoryResponse]{}, err
	}

	updated := category.Update(cmd.Name, cmd.Description)

	unit := s.newUnitOfWork()
	unit.RegisterDirty(category, updated)
	if err := unit.Commit(ctx); err != nil {
		return result.Result[UpdateCategoryResponse]{}, err
	}

	s.invalidateCache(ctx, categoryCacheKey(category.ID))
	return result.Success(UpdateCategoryResponse{ID: category.ID}, "Category updated successfully."), nil
}

// DeleteCategory soft-deletes a category.
func (s *service) DeleteCategory(ctx context.Context, cmd DeleteCategoryCommand) (result.Result[DeleteCategoryResponse], error) {
	if errs := utils.ValidateStruct(cmd); errs != nil {
		return result.Invalid[DeleteCategoryResponse](errs...), nil
	}

	category, err := s.repo.FindCategoryByID(ctx, cmd.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFound[DeleteCategoryResponse](fmt.Sprintf("No category found by Id: %s", cmd.ID)), nil
	}
	if err != nil {
		return result.Result[DeleteCategoryResponse]{}, err
	}

	deleted, raised := category.Delete()
	if !raised {
		return result.NotFound[DeleteCategoryResponse](fmt.Sprintf("No category found by Id: %s", cmd.ID)), nil
	}

	unit := s.newUnitOfWork()
	unit.RegisterDirty(category, deleted)
	if err := unit.Commit(ctx); err != nil {
		return result.Result[DeleteCategoryResponse]{}, err
	}

	s.invalidateCache(ctx, categoryCacheKey(category.ID))
	log.Info().Str("categoryID", category.ID.String()).Msg("Category deleted")
	return result.Success(DeleteCategoryResponse{ID: category.ID}, "Category deleted successfully."), nil
}

// GetCategoryByID returns a single category, consulting the read cache
// first.
func (s *service) GetCategoryByID(ctx context.Context, id uuid.UUID) (result.Result[CategoryResponse], error) {
	key := categoryCacheKey(id)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var response CategoryResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return result.Success(response, "Category retrieved successfully."), nil
			}
		} else if !errors.Is(err, cache.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
	}

	category, err := s.repo.FindCategoryByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return result.NotFound[CategoryResponse](fmt.Sprintf("No category found by Id: %s", id)), nil
	}
	if err != nil {
		return result.Result[CategoryResponse]{}, err
	}

	response := toCategoryResponse(*category)
	if s.cache != nil {
		if data, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, key, string(data), categoryCacheTTL); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to cache category")
			}
		}
	}
	return result.Success(response, "Category retrieved successfully."), nil
}

// ListCategories runs a filter-order-page query over the not-deleted
// categories.
func (s *service) ListCategories(ctx context.Context, query ListQuery) (result.Result[CategoryListResponse], error) {
	plan, err := fop.Build(repository.CategoryFields, query.Filter, query.Order, query.PageNumber, query.PageSize)
	if err != nil {
		if res, err, ok := invalidFop[CategoryListResponse](err); ok {
			return res, err
		}
		return result.Result[CategoryListResponse]{}, err
	}

	categories, total, err := s.repo.ListCategories(ctx, plan)
	if err != nil {
		return result.Result[CategoryListResponse]{}, err
	}

	response := CategoryListResponse{
		PagedInfo:  fop.NewPagedInfo(plan.PageNumber, plan.PageSize, total),
		Categories: make([]CategoryResponse, 0, len(categories)),
	}
	for _, category := range categories {
		response.Categories = append(response.Categories, toCategoryResponse(category))
	}
	return result.Success(response, "Categories retrieved successfully."), nil
}

func toCategoryResponse(category domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}
