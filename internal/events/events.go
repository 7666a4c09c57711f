package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents carries booking lifecycle events for every venue.
const TopicBookingEvents = "booking.events"

// Event types published on TopicBookingEvents.
const (
	BookingCreated   = "holidaze.booking.created"
	BookingCancelled = "holidaze.booking.cancelled"
)

// Source identifies this service in published CloudEvents.
const Source = "service-booking"

// BookingCreatedEvent is published after a booking is persisted.
type BookingCreatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	VenueID         uuid.UUID `json:"venue_id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	DateFrom        string    `json:"date_from"`
	DateTo          string    `json:"date_to"`
	Guests          int       `json:"guests"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	VenueID       uuid.UUID `json:"venue_id"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Reason        string    `json:"reason,omitempty"`
	DateFrom      string    `json:"date_from"`
	DateTo        string    `json:"date_to"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// venueEvent is the part of every booking event the consumer needs.
type venueEvent struct {
	VenueID uuid.UUID `json:"venue_id"`
}
