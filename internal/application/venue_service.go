package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holidaze/service-booking/internal/common/domain"
	venueDomain "github.com/holidaze/service-booking/internal/domain/venue"
)

// CreateVenueRequest is the request DTO for registering a venue.
type CreateVenueRequest struct {
	Name              string `json:"name" binding:"required,max=200"`
	Description       string `json:"description"`
	MaxGuests         int    `json:"max_guests" binding:"required,min=1"`
	NightlyPriceCents int64  `json:"nightly_price_cents" binding:"min=0"`
	Currency          string `json:"currency" binding:"omitempty,len=3"`
}

// UpdateVenueRequest is the request DTO for updating a venue. Zero values
// leave a field unchanged.
type UpdateVenueRequest struct {
	Name              string `json:"name" binding:"max=200"`
	Description       string `json:"description"`
	MaxGuests         int    `json:"max_guests" binding:"min=0"`
	NightlyPriceCents int64  `json:"nightly_price_cents" binding:"min=0"`
}

// VenueDTO is the API response representation of a venue.
type VenueDTO struct {
	ID                uuid.UUID `json:"id"`
	ManagerID         uuid.UUID `json:"manager_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	MaxGuests         int       `json:"max_guests"`
	NightlyPriceCents int64     `json:"nightly_price_cents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// VenueService implements use cases for venue management.
type VenueService struct {
	repo   venueDomain.VenueRepository
	logger *zap.Logger
}

// NewVenueService creates a new VenueService.
func NewVenueService(repo venueDomain.VenueRepository, logger *zap.Logger) *VenueService {
	return &VenueService{repo: repo, logger: logger}
}

// CreateVenue registers a new venue for the given manager.
func (s *VenueService) CreateVenue(ctx context.Context, managerID uuid.UUID, req CreateVenueRequest) (*VenueDTO, error) {
	v, err := venueDomain.NewVenue(
		managerID,
		req.Name, req.Description,
		req.MaxGuests,
		req.NightlyPriceCents,
		req.Currency,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid venue data: %w", err)
	}

	if err := s.repo.Save(ctx, v); err != nil {
		s.logger.Error("failed to create venue", zap.Error(err))
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	s.logger.Info("venue created",
		zap.String("venue_id", v.ID().String()),
		zap.String("manager_id", managerID.String()),
	)
	result := toVenueDTO(v)
	return &result, nil
}

// GetVenue returns a single venue by ID.
func (s *VenueService) GetVenue(ctx context.Context, venueID uuid.UUID) (*VenueDTO, error) {
	v, err := s.repo.FindByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	result := toVenueDTO(v)
	return &result, nil
}

// GetMyVenues returns all active venues of the given manager.
func (s *VenueService) GetMyVenues(ctx context.Context, managerID uuid.UUID) ([]VenueDTO, error) {
	venues, err := s.repo.FindByManagerID(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get venues: %w", err)
	}
	dtos := make([]VenueDTO, len(venues))
	for i, v := range venues {
		dtos[i] = toVenueDTO(v)
	}
	return dtos, nil
}

// UpdateVenue updates a venue, verifying the caller manages it.
func (s *VenueService) UpdateVenue(ctx context.Context, managerID, venueID uuid.UUID, req UpdateVenueRequest) (*VenueDTO, error) {
	v, err := s.repo.FindByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !v.IsManagedBy(managerID) {
		return nil, domain.NewForbiddenError("you do not manage this venue")
	}

	v.Update(req.Name, req.Description, req.MaxGuests, req.NightlyPriceCents)

	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to update venue", zap.Error(err))
		return nil, fmt.Errorf("failed to update venue: %w", err)
	}

	s.logger.Info("venue updated", zap.String("venue_id", venueID.String()))
	result := toVenueDTO(v)
	return &result, nil
}

// ArchiveVenue stops a venue from accepting bookings, verifying the caller
// manages it. Existing bookings are kept.
func (s *VenueService) ArchiveVenue(ctx context.Context, managerID, venueID uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, venueID)
	if err != nil {
		return err
	}
	if !v.IsManagedBy(managerID) {
		return domain.NewForbiddenError("you do not manage this venue")
	}

	v.Archive()
	if err := s.repo.Update(ctx, v); err != nil {
		s.logger.Error("failed to archive venue", zap.Error(err))
		return fmt.Errorf("failed to archive venue: %w", err)
	}

	s.logger.Info("venue archived", zap.String("venue_id", venueID.String()))
	return nil
}

func toVenueDTO(v *venueDomain.Venue) VenueDTO {
	return VenueDTO{
		ID:                v.ID(),
		ManagerID:         v.ManagerID(),
		Name:              v.Name(),
		Description:       v.Description(),
		MaxGuests:         v.MaxGuests(),
		NightlyPriceCents: v.NightlyPriceCents(),
		Currency:          v.Currency(),
		Status:            string(v.Status()),
		CreatedAt:         v.CreatedAt(),
		UpdatedAt:         v.UpdatedAt(),
	}
}
