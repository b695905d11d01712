package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/backstage/services/catalog/internal/cache"
	"example.com/backstage/services/catalog/internal/eventstore"
	"example.com/backstage/services/catalog/internal/fop"
	"example.com/backstage/services/catalog/internal/repository"
	"example.com/backstage/services/catalog/internal/result"
	"example.com/backstage/services/catalog/internal/uow"
)

// Service defines the catalog use cases. Every method returns a Result for
// the expected outcomes (success, validation failure, not found); the error
// return carries persistence and concurrency failures for the boundary
// layer to translate.
type Service interface {
	// Product operations
	CreateProduct(ctx context.Context, cmd CreateProductCommand) (result.Result[CreateProductResponse], error)
	UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (result.Result[UpdateProductResponse], error)
	DeleteProduct(ctx context.Context, cmd DeleteProductCommand) (result.Result[DeleteProductResponse], error)
	GetProductByID(ctx context.Context, id uuid.UUID) (result.Result[ProductResponse], error)
	ListProducts(ctx context.Context, query ListQuery) (result.Result[ProductListResponse], error)

	// Category operations
	CreateCategory(ctx context.Context, cmd CreateCategoryCommand) (result.Result[CreateCategoryResponse], error)
	UpdateCategory(ctx context.Context, cmd UpdateCategoryCommand) (result.Result[UpdateCategoryResponse], error)
	DeleteCategory(ctx context.Context, cmd DeleteCategoryCommand) (result.Result[DeleteCategoryResponse], error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (result.Result[CategoryResponse], error)
	ListCategories(ctx context.Context, query ListQuery) (result.Result[CategoryListResponse], error)

	// Event log
	AggregateHistory(ctx context.Context, aggregateID uuid.UUID) (result.Result[[]EventResponse], error)
}

// service is an implementation of the Service interface.
type service struct {
	db    *gorm.DB
	repo  repository.Repository
	store eventstore.Store
	cache cache.Client
}

// New creates the catalog service. The cache client may be nil, in which
// case reads always go to the repository.
func New(db *gorm.DB, repo repository.Repository, store eventstore.Store, cacheClient cache.Client) Service {
	return &service{
		db:    db,
		repo:  repo,
		store: store,
		cache: cacheClient,
	}
}

// newUnitOfWork builds the per-command commit boundary.
func (s *service) newUnitOfWork() *uow.UnitOfWork {
	return uow.New(s.db, s.store)
}

// invalidFop folds a filter/order/page parse error into a validation
// result; any other error propagates.
func invalidFop[T any](err error) (result.Result[T], error, bool) {
	var perr *fop.ParseError
	if errors.As(err, &perr) {
		return result.Invalid[T](result.FieldError{Field: perr.Field, Message: perr.Message}), nil, true
	}
	return result.Result[T]{}, err, false
}

// AggregateHistory returns the ordered event history of one aggregate.
func (s *service) AggregateHistory(ctx context.Context, aggregateID uuid.UUID) (result.Result[[]EventResponse], error) {
	records, err := s.store.History(ctx, aggregateID)
	if err != nil {
		return result.Result[[]EventResponse]{}, err
	}
	if len(records) == 0 {
		return result.NotFound[[]EventResponse]("no events found for aggregate " + aggregateID.String()), nil
	}

	history := make([]EventResponse, 0, len(records))
	for _, record := range records {
		history = append(history, EventResponse{
			EventID:       record.EventID,
			AggregateID:   record.AggregateID,
			AggregateType: record.AggregateType,
			MessageType:   record.MessageType,
			Data:          record.Data,
			OccurredOn:    record.OccurredOn,
		})
	}
	return result.Success(history, "Events retrieved successfully."), nil
}
