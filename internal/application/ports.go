package application

//go:generate go run go.uber.org/mock/mockgen -source=./ports.go -destination=./mocks/ports_mock.go -package=mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/holidaze/service-booking/internal/common/kafka"
	"github.com/holidaze/service-booking/internal/domain/availability"
)

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// SnapshotCache is a shared store of the raw booking records of a venue.
// Get reports a miss with cache.ErrMiss.
type SnapshotCache interface {
	Get(ctx context.Context, venueID uuid.UUID) ([]availability.BookingRecord, error)
	Save(ctx context.Context, venueID uuid.UUID, records []availability.BookingRecord) error
	Invalidate(ctx context.Context, venueID uuid.UUID) error
}
