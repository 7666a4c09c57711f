package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/holidaze/service-booking/internal/common/domain"
	venueDomain "github.com/holidaze/service-booking/internal/domain/venue"
)

// VenueModel is the GORM model for the venues table.
type VenueModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ManagerID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Name              string    `gorm:"type:varchar(200);not null"`
	Description       string    `gorm:"type:text"`
	MaxGuests         int       `gorm:"not null"`
	NightlyPriceCents int64     `gorm:"not null;default:0"`
	Currency          string    `gorm:"type:varchar(3);not null;default:'NOK'"`
	Status            string    `gorm:"type:varchar(20);not null;default:'active'"`
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt         time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (VenueModel) TableName() string { return "venues" }

// GormVenueRepository implements VenueRepository using GORM.
type GormVenueRepository struct {
	db *gorm.DB
}

func NewGormVenueRepository(db *gorm.DB) *GormVenueRepository {
	return &GormVenueRepository{db: db}
}

func (r *GormVenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*venueDomain.Venue, error) {
	var model VenueModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Venue", id.String())
		}
		return nil, fmt.Errorf("failed to find venue: %w", err)
	}
	return toVenueDomain(&model), nil
}

func (r *GormVenueRepository) FindByManagerID(ctx context.Context, managerID uuid.UUID) ([]*venueDomain.Venue, error) {
	var models []VenueModel
	if err := r.db.WithContext(ctx).
		Where("manager_id = ? AND status = ?", managerID, string(venueDomain.VenueStatusActive)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find manager venues: %w", err)
	}
	venues := make([]*venueDomain.Venue, len(models))
	for i := range models {
		venues[i] = toVenueDomain(&models[i])
	}
	return venues, nil
}

func (r *GormVenueRepository) Save(ctx context.Context, v *venueDomain.Venue) error {
	if err := r.db.WithContext(ctx).Create(toVenueModel(v)).Error; err != nil {
		return fmt.Errorf("failed to save venue: %w", err)
	}
	return nil
}

func (r *GormVenueRepository) Update(ctx context.Context, v *venueDomain.Venue) error {
	model := toVenueModel(v)
	previousVersion := v.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&VenueModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"name":                model.Name,
			"description":         model.Description,
			"max_guests":          model.MaxGuests,
			"nightly_price_cents": model.NightlyPriceCents,
			"status":              model.Status,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update venue: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("venue was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toVenueModel(v *venueDomain.Venue) *VenueModel {
	return &VenueModel{
		ID:                v.ID(),
		ManagerID:         v.ManagerID(),
		Name:              v.Name(),
		Description:       v.Description(),
		MaxGuests:         v.MaxGuests(),
		NightlyPriceCents: v.NightlyPriceCents(),
		Currency:          v.Currency(),
		Status:            string(v.Status()),
		Version:           v.Version(),
		CreatedAt:         v.CreatedAt(),
		UpdatedAt:         v.UpdatedAt(),
	}
}

func toVenueDomain(m *VenueModel) *venueDomain.Venue {
	return venueDomain.Reconstruct(
		m.ID, m.ManagerID,
		m.Name, m.Description,
		m.MaxGuests,
		m.NightlyPriceCents,
		m.Currency,
		venueDomain.VenueStatus(m.Status),
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
