package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/holidaze/service-booking/internal/common/kafka"
)

// VenueInvalidator drops whatever availability state is held for a venue.
type VenueInvalidator interface {
	InvalidateVenue(ctx context.Context, venueID uuid.UUID) error
}

// BookingEventConsumer listens to booking events, including those published
// by other replicas, and invalidates the affected venue's snapshot.
type BookingEventConsumer struct {
	consumer    *kafka.Consumer
	invalidator VenueInvalidator
	logger      *zap.Logger
}

// NewBookingEventConsumer creates a new BookingEventConsumer. A new group
// starts at the newest offset: snapshots built after startup already hold
// every earlier booking, so older events carry nothing to invalidate.
func NewBookingEventConsumer(
	brokers []string,
	groupID string,
	invalidator VenueInvalidator,
	logger *zap.Logger,
	opts ...kafka.ConsumerOption,
) *BookingEventConsumer {
	opts = append([]kafka.ConsumerOption{kafka.WithStartOffset(kafkago.LastOffset)}, opts...)
	return &BookingEventConsumer{
		consumer:    kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger, opts...),
		invalidator: invalidator,
		logger:      logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (c *BookingEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *BookingEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *BookingEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingCreated, BookingCancelled:
		return c.handleVenueChanged(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *BookingEventConsumer) handleVenueChanged(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt venueEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.VenueID == uuid.Nil {
		c.logger.Error("booking event has no usable venue_id",
			zap.String("type", cloudEvent.Type),
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	if err := c.invalidator.InvalidateVenue(ctx, evt.VenueID); err != nil {
		c.logger.Error("failed to invalidate venue availability",
			zap.String("venue_id", evt.VenueID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Debug("venue availability invalidated",
		zap.String("venue_id", evt.VenueID.String()),
		zap.String("type", cloudEvent.Type),
	)
	return nil
}
