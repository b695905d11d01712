package domain

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate type discriminators shared with the event log.
const (
	ProductAggregate  = "product"
	CategoryAggregate = "category"
)

// Message type constants
const (
	// Product events
	ProductCreated = "V1_PRODUCT_CREATED"
	ProductUpdated = "V1_PRODUCT_UPDATED"
	ProductDeleted = "V1_PRODUCT_DELETED"

	// Category events
	CategoryCreated = "V1_CATEGORY_CREATED"
	CategoryUpdated = "V1_CATEGORY_UPDATED"
	CategoryDeleted = "V1_CATEGORY_DELETED"
)

// Event is a domain event raised by an aggregate mutation. Mutating methods
// return the events they raise; nothing is kept on the aggregate itself, so
// the caller owns the events until the unit of work commits them.
type Event struct {
	EventID       uuid.UUID   `json:"event_id"`
	AggregateID   uuid.UUID   `json:"aggregate_id"`
	AggregateType string      `json:"aggregate_type"`
	MessageType   string      `json:"message_type"`
	OccurredOn    time.Time   `json:"occurred_on"`
	Data          interface{} `json:"data"`
}

func newEvent(aggregateType, messageType string, aggregateID uuid.UUID, data interface{}) Event {
	return Event{
		EventID:       uuid.New(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		MessageType:   messageType,
		OccurredOn:    time.Now().UTC(),
		Data:          data,
	}
}

// ProductEvent is the serialized payload of every product event: a snapshot
// of the aggregate state at raise time.
type ProductEvent struct {
	ProductID     uuid.UUID   `json:"product_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         float64     `json:"price"`
	StockQuantity int         `json:"stock_quantity"`
	SKU           string      `json:"sku"`
	Brand         string      `json:"brand"`
	Images        []string    `json:"images"`
	Tags          []string    `json:"tags"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
	IsDeleted     bool        `json:"is_deleted"`
}

// CategoryEvent is the serialized payload of every category event.
type CategoryEvent struct {
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsDeleted   bool      `json:"is_deleted"`
}
