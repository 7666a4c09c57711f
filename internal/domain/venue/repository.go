package venue

import (
	"context"

	"github.com/google/uuid"
)

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=./mocks/repository_mock.go -package=mocks

// VenueRepository defines persistence operations for venues.
type VenueRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	FindByManagerID(ctx context.Context, managerID uuid.UUID) ([]*Venue, error)
	Save(ctx context.Context, venue *Venue) error
	Update(ctx context.Context, venue *Venue) error
}
