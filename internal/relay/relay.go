// Package relay drains the event log outbox: unprocessed records are
// published to the service bus and projected into the search index, then
// flagged as processed.
package relay

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"example.com/backstage/services/catalog/internal/domain"
	"example.com/backstage/services/catalog/internal/eventstore"
	"example.com/backstage/services/catalog/internal/messaging"
	"example.com/backstage/services/catalog/internal/models"
	"example.com/backstage/services/catalog/internal/search"
)

// Relay moves committed events out of the log and into downstream systems.
type Relay struct {
	store     eventstore.Store
	publisher messaging.Publisher
	indexer   search.Indexer
	batchSize int
}

// New creates a relay. The indexer may be nil when search is not configured;
// product events are then published without being projected.
func New(store eventstore.Store, publisher messaging.Publisher, indexer search.Indexer, batchSize int) *Relay {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		indexer:   indexer,
		batchSize: batchSize,
	}
}

// ProcessOnce drains one batch of unprocessed records. Records are handled
// concurrently; a record that fails stays unprocessed and is retried on the
// next run. Returns the number of records handled successfully.
func (r *Relay) ProcessOnce(ctx context.Context) (int, error) {
	records, err := r.store.Unprocessed(ctx, r.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load outbox batch")
	}
	if len(records) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	processed := make(chan struct{}, len(records))
	for _, record := range records {
		record := record
		g.Go(func() error {
			if err := r.handle(gctx, record); err != nil {
				log.Error().Err(err).
					Str("eventID", record.EventID.String()).
					Str("messageType", record.MessageType).
					Msg("Failed to relay event")
				return err
			}
			processed <- struct{}{}
			return nil
		})
	}

	err = g.Wait()
	close(processed)
	return len(processed), err
}

func (r *Relay) handle(ctx context.Context, record models.EventRecord) error {
	if err := r.publisher.Publish(ctx, record); err != nil {
		return errors.Wrap(err, "failed to publish event")
	}

	if err := r.project(ctx, record); err != nil {
		return errors.Wrap(err, "failed to project event")
	}

	if err := r.store.MarkProcessed(ctx, record.EventID); err != nil {
		return errors.Wrap(err, "failed to mark event as processed")
	}

	log.Info().
		Str("eventID", record.EventID.String()).
		Str("messageType", record.MessageType).
		Msg("Event relayed")
	return nil
}

// project keeps the search index in step with product events. Category
// events are publish-only.
func (r *Relay) project(ctx context.Context, record models.EventRecord) error {
	if r.indexer == nil || record.AggregateType != domain.ProductAggregate {
		return nil
	}

	switch record.MessageType {
	case domain.ProductCreated, domain.ProductUpdated:
		var payload domain.ProductEvent
		if err := json.Unmarshal([]byte(record.Data), &payload); err != nil {
			return errors.Wrap(err, "failed to decode product payload")
		}
		if payload.IsDeleted {
			return r.indexer.RemoveProduct(ctx, payload.ProductID.String())
		}
		return r.indexer.IndexProduct(ctx, search.ProductDocument{
			ID:            payload.ProductID.String(),
			Name:          payload.Name,
			Description:   payload.Description,
			Price:         payload.Price,
			StockQuantity: payload.StockQuantity,
			SKU:           payload.SKU,
			Brand:         payload.Brand,
			Tags:          payload.Tags,
		})
	case domain.ProductDeleted:
		return r.indexer.RemoveProduct(ctx, record.AggregateID.String())
	}
	return nil
}
