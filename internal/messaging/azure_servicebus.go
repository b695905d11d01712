package messaging

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/catalog/config"
	"example.com/backstage/services/catalog/internal/models"
)

// Publisher publishes event-log records as integration events.
type Publisher interface {
	Publish(ctx context.Context, record models.EventRecord) error
	Close() error
}

// serviceBusPublisher implements Publisher on Azure Service Bus.
type serviceBusPublisher struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
}

// noopPublisher is used when no connection string is configured, so local
// development works without a broker.
type noopPublisher struct{}

// NewPublisher creates a Service Bus publisher, or a no-op one when the
// connection string is empty.
func NewPublisher(cfg config.ServiceBusConfig) (Publisher, error) {
	if cfg.ConnectionString == "" {
		log.Warn().Msg("No Service Bus connection string configured, events will not be published")
		return &noopPublisher{}, nil
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus sender: %w", err)
	}

	return &serviceBusPublisher{client: client, sender: sender}, nil
}

// Publish sends one event record. The serialized payload goes in the body;
// the discriminators travel as application properties.
func (p *serviceBusPublisher) Publish(ctx context.Context, record models.EventRecord) error {
	messageID := record.EventID.String()
	msg := &azservicebus.Message{
		MessageID: &messageID,
		Body:      []byte(record.Data),
		ApplicationProperties: map[string]interface{}{
			"aggregate_id":   record.AggregateID.String(),
			"aggregate_type": record.AggregateType,
			"message_type":   record.MessageType,
			"occurred_on":    record.OccurredOn.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}

	if err := p.sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close releases the sender and the client.
func (p *serviceBusPublisher) Close() error {
	ctx := context.Background()
	if err := p.sender.Close(ctx); err != nil {
		return err
	}
	return p.client.Close(ctx)
}

func (p *noopPublisher) Publish(ctx context.Context, record models.EventRecord) error {
	log.Debug().
		Str("eventID", record.EventID.String()).
		Str("messageType", record.MessageType).
		Msg("Skipping publish, no broker configured")
	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}
