package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/holidaze/service-booking/internal/common/domain"
	"github.com/holidaze/service-booking/internal/domain/availability"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a stay at a venue.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	venueID       uuid.UUID
	customerID    uuid.UUID
	status        BookingStatus
	stay          availability.DateRange
	guests        int

	totalPriceCents int64
	currency        string

	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "HZ-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "HZ-" + string(result), nil
}

// NewBooking creates a confirmed Booking. The stay must already be a
// normalized range; availability is checked by the caller and enforced again
// by the repository on insert.
func NewBooking(
	venueID uuid.UUID,
	customerID uuid.UUID,
	stay availability.DateRange,
	guests int,
	totalPriceCents int64,
	currency string,
) (*Booking, error) {
	if venueID == uuid.Nil {
		return nil, domain.NewValidationError("venue ID is required")
	}
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if stay.From.IsZero() || stay.To.IsZero() {
		return nil, domain.NewValidationError("stay dates are required")
	}
	if stay.To.Before(stay.From) {
		return nil, domain.NewValidationError("end date must be after start date")
	}
	if guests <= 0 {
		return nil, domain.NewValidationError("guests must be positive")
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		venueID:         venueID,
		customerID:      customerID,
		status:          StatusConfirmed,
		stay:            stay,
		guests:          guests,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	venueID uuid.UUID,
	customerID uuid.UUID,
	status BookingStatus,
	stay availability.DateRange,
	guests int,
	totalPriceCents int64,
	currency string,
	cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		venueID:         venueID,
		customerID:      customerID,
		status:          status,
		stay:            stay,
		guests:          guests,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		cancelledAt:     cancelledAt,
		cancelNote:      cancelNote,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// VenueID returns the booked venue.
func (b *Booking) VenueID() uuid.UUID { return b.venueID }

// CustomerID returns the guest who made the booking.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Stay returns the booked calendar days.
func (b *Booking) Stay() availability.DateRange { return b.stay }

// Guests returns the guest count.
func (b *Booking) Guests() int { return b.guests }

// TotalPriceCents returns the price of the whole stay in cents.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy reports whether the booking was made by customerID.
func (b *Booking) IsOwnedBy(customerID uuid.UUID) bool {
	return b.customerID == customerID
}

// IsActive reports whether the booking still blocks its dates.
func (b *Booking) IsActive() bool {
	return b.status == StatusConfirmed
}

// Record returns the snapshot row the availability engine consumes.
func (b *Booking) Record() availability.BookingRecord {
	return availability.BookingRecord{
		ID:       b.id.String(),
		DateFrom: b.stay.From.Format(availability.DateLayout),
		DateTo:   b.stay.To.Format(availability.DateLayout),
		Guests:   b.guests,
	}
}

// Cancel releases the booking's dates.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
