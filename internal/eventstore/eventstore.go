// Package eventstore persists domain events to the append-only event log.
package eventstore

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/models"
)

// Store is the interface for the event log.
type Store interface {
	// Append serializes the events and inserts their records using the
	// caller's transaction handle, so the log commits or rolls back with
	// the entity state that produced the events.
	Append(ctx context.Context, tx *gorm.DB, events []domain.Event) error

	// History returns an aggregate's events in the order they occurred.
	History(ctx context.Context, aggregateID uuid.UUID) ([]models.EventRecord, error)

	// Unprocessed returns up to limit records the relay has not handled
	// yet, oldest first.
	Unprocessed(ctx context.Context, limit int) ([]models.EventRecord, error)

	// MarkProcessed flags a record as handled by the relay.
	MarkProcessed(ctx context.Context, eventID uuid.UUID) error
}

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// New creates a GORM event store.
func New(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Append serializes each event payload to JSON and inserts the records on
// the given transaction.
func (s *GormStore) Append(ctx context.Context, tx *gorm.DB, events []domain.Event) error {
	for _, event := range events {
		data, err := json.Marshal(event.Data)
		if err != nil {
			return errors.Wrapf(err, "failed to serialize %s event", event.MessageType)
		}

		record := models.EventRecord{
			EventID:       event.EventID,
			AggregateID:   event.AggregateID,
			AggregateType: event.AggregateType,
			MessageType:   event.MessageType,
			Data:          string(data),
			OccurredOn:    event.OccurredOn,
		}

		if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
			return errors.Wrap(err, "failed to append event record")
		}

		log.Debug().
			Str("aggregateID", event.AggregateID.String()).
			Str("messageType", event.MessageType).
			Msg("Event appended")
	}
	return nil
}

// History returns the ordered event history of one aggregate.
func (s *GormStore) History(ctx context.Context, aggregateID uuid.UUID) ([]models.EventRecord, error) {
	var records []models.EventRecord
	err := s.db.WithContext(ctx).
		Where("aggregate_id = ?", aggregateID).
		Order("occurred_on ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load event history")
	}
	return records, nil
}

// Unprocessed returns the oldest unprocessed records for the relay.
func (s *GormStore) Unprocessed(ctx context.Context, limit int) ([]models.EventRecord, error) {
	var records []models.EventRecord
	err := s.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("occurred_on ASC, id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load unprocessed events")
	}
	return records, nil
}

// MarkProcessed flags one record as handled.
func (s *GormStore) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&models.EventRecord{}).
		Where("event_id = ?", eventID).
		Update("processed", true).Error
	if err != nil {
		return errors.Wrap(err, "failed to mark event as processed")
	}
	return nil
}
