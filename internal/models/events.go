package models

import (
	"time"

	"github.com/google/uuid"
)

// EventRecord is the durable projection of a domain event. The table is
// append-only: the application inserts and reads records, the relay flips
// Processed, and nothing is ever updated or deleted beyond that.
type EventRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EventID       uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"event_id"`
	AggregateID   uuid.UUID `gorm:"type:uuid;index" json:"aggregate_id"`
	AggregateType string    `gorm:"size:255" json:"aggregate_type"`
	MessageType   string    `gorm:"size:255;not null" json:"message_type"`
	Data          string    `gorm:"type:text;not null" json:"data"`
	OccurredOn    time.Time `gorm:"index" json:"occurred_on"`
	Processed     bool      `gorm:"index;default:false" json:"processed"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName keeps the shared event log under a single table regardless of
// aggregate type.
func (EventRecord) TableName() string {
	return "event_records"
}
