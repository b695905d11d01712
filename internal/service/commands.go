package service

import (
	"time"

	"github.com/google/uuid"

	"example.com/backstage/services/catalog/internal/fop"
)

// Command structs

type CreateProductCommand struct {
	Name          string      `json:"name" validate:"required"`
	Description   string      `json:"description"`
	Price         float64     `json:"price" validate:"gte=0"`
	StockQuantity int         `json:"stock_quantity" validate:"gte=0"`
	SKU           string      `json:"sku" validate:"required"`
	Brand         string      `json:"brand"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
	ImageURLs     []string    `json:"image_urls"`
	Tags          []string    `json:"tags"`
}

type UpdateProductCommand struct {
	ID            uuid.UUID `json:"id" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description"`
	Price         float64   `json:"price" validate:"gte=0"`
	StockQuantity int       `json:"stock_quantity" validate:"gte=0"`
	SKU           string    `json:"sku" validate:"required"`
	Brand         string    `json:"brand"`
	// CategoryIDs is the desired full category set; nil leaves the links
	// unchanged.
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

type DeleteProductCommand struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type CreateCategoryCommand struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type UpdateCategoryCommand struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
}

type DeleteCategoryCommand struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

// ListQuery carries the filter-order-page parameters of a list request.
type ListQuery struct {
	Filter     string `json:"filter"`
	Order      string `json:"order"`
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
}

// Response structs

type CreateProductResponse struct {
	ID uuid.UUID `json:"id"`
}

type UpdateProductResponse struct {
	ID uuid.UUID `json:"id"`
}

type DeleteProductResponse struct {
	ID uuid.UUID `json:"id"`
}

type ProductResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Price         float64            `json:"price"`
	StockQuantity int                `json:"stock_quantity"`
	SKU           string             `json:"sku"`
	Brand         string             `json:"brand"`
	Images        []string           `json:"images"`
	Tags          []string           `json:"tags"`
	Categories    []CategoryResponse `json:"categories"`
}

type ProductListResponse struct {
	PagedInfo fop.PagedInfo     `json:"paged_info"`
	Products  []ProductResponse `json:"products"`
}

type CreateCategoryResponse struct {
	ID uuid.UUID `json:"id"`
}

type UpdateCategoryResponse struct {
	ID uuid.UUID `json:"id"`
}

type DeleteCategoryResponse struct {
	ID uuid.UUID `json:"id"`
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

type CategoryListResponse struct {
	PagedInfo  fop.PagedInfo      `json:"paged_info"`
	Categories []CategoryResponse `json:"categories"`
}

// EventResponse is one entry of an aggregate's event history.
type EventResponse struct {
	EventID       uuid.UUID `json:"event_id"`
	AggregateID   uuid.UUID `json:"aggregate_id"`
	AggregateType string    `json:"aggregate_type"`
	MessageType   string    `json:"message_type"`
	Data          string    `json:"data"`
	OccurredOn    time.Time `json:"occurred_on"`
}
