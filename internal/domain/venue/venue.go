package venue

import (
	"time"

	"github.com/google/uuid"

	"github.com/holidaze/service-booking/internal/common/domain"
)

// VenueStatus represents the lifecycle state of a venue listing.
type VenueStatus string

const (
	VenueStatusActive   VenueStatus = "active"
	VenueStatusArchived VenueStatus = "archived"
)

// Venue is the aggregate root for a bookable listing.
type Venue struct {
	id                uuid.UUID
	managerID         uuid.UUID
	name              string
	description       string
	maxGuests         int
	nightlyPriceCents int64
	currency          string
	status            VenueStatus
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

// NewVenue creates a new active venue with validated fields.
func NewVenue(
	managerID uuid.UUID,
	name, description string,
	maxGuests int,
	nightlyPriceCents int64,
	currency string,
) (*Venue, error) {
	if managerID == uuid.Nil {
		return nil, domain.NewValidationError("manager ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("venue name is required")
	}
	if maxGuests < 1 {
		return nil, domain.NewValidationError("max guests must be at least 1")
	}
	if nightlyPriceCents < 0 {
		return nil, domain.NewValidationError("price cannot be negative")
	}
	if currency == "" {
		currency = domain.CurrencyNOK
	}

	now := time.Now().UTC()
	return &Venue{
		id:                uuid.New(),
		managerID:         managerID,
		name:              name,
		description:       description,
		maxGuests:         maxGuests,
		nightlyPriceCents: nightlyPriceCents,
		currency:          currency,
		status:            VenueStatusActive,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// Reconstruct rebuilds a Venue from persistence data (no validation).
func Reconstruct(
	id, managerID uuid.UUID,
	name, description string,
	maxGuests int,
	nightlyPriceCents int64,
	currency string,
	status VenueStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Venue {
	return &Venue{
		id:                id,
		managerID:         managerID,
		name:              name,
		description:       description,
		maxGuests:         maxGuests,
		nightlyPriceCents: nightlyPriceCents,
		currency:          currency,
		status:            status,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

func (v *Venue) ID() uuid.UUID             { return v.id }
func (v *Venue) ManagerID() uuid.UUID      { return v.managerID }
func (v *Venue) Name() string              { return v.name }
func (v *Venue) Description() string       { return v.description }
func (v *Venue) MaxGuests() int            { return v.maxGuests }
func (v *Venue) NightlyPriceCents() int64  { return v.nightlyPriceCents }
func (v *Venue) Currency() string          { return v.currency }
func (v *Venue) Status() VenueStatus       { return v.status }
func (v *Venue) Version() int64            { return v.version }
func (v *Venue) CreatedAt() time.Time      { return v.createdAt }
func (v *Venue) UpdatedAt() time.Time      { return v.updatedAt }

// --- Behavior ---

// IsManagedBy checks if the venue belongs to the given manager.
func (v *Venue) IsManagedBy(managerID uuid.UUID) bool {
	return v.managerID == managerID
}

// Update applies partial updates. Zero values leave a field unchanged.
func (v *Venue) Update(name, description string, maxGuests int, nightlyPriceCents int64) {
	if name != "" {
		v.name = name
	}
	if description != "" {
		v.description = description
	}
	if maxGuests > 0 {
		v.maxGuests = maxGuests
	}
	if nightlyPriceCents > 0 {
		v.nightlyPriceCents = nightlyPriceCents
	}
	v.version++
	v.updatedAt = time.Now().UTC()
}

// Archive takes the venue off the market. Existing bookings stay valid.
func (v *Venue) Archive() {
	v.status = VenueStatusArchived
	v.version++
	v.updatedAt = time.Now().UTC()
}

// IsActive returns true if the venue accepts new bookings.
func (v *Venue) IsActive() bool {
	return v.status == VenueStatusActive
}
