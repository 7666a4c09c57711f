package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holidaze/service-booking/internal/cache"
	"github.com/holidaze/service-booking/internal/common/auth"
	"github.com/holidaze/service-booking/internal/common/domain"
	"github.com/holidaze/service-booking/internal/common/kafka"
	"github.com/holidaze/service-booking/internal/domain/availability"
	bookingDomain "github.com/holidaze/service-booking/internal/domain/booking"
	venueDomain "github.com/holidaze/service-booking/internal/domain/venue"
	"github.com/holidaze/service-booking/internal/events"
)

// RejectPastDates is reported when a stay starts before today. The engine
// itself does not look at the clock when validating.
const RejectPastDates availability.RejectionKind = "past_dates"

// SubmitBookingRequest is the submission payload for a new booking.
type SubmitBookingRequest struct {
	VenueID  uuid.UUID `json:"venueId" binding:"required"`
	DateFrom string    `json:"dateFrom" binding:"omitempty,calendar_date"`
	DateTo   string    `json:"dateTo" binding:"omitempty,calendar_date"`
	Guests   int       `json:"guests"`
}

// CandidateRequest is a stay to check without booking it.
type CandidateRequest struct {
	DateFrom string `form:"dateFrom" binding:"omitempty,calendar_date"`
	DateTo   string `form:"dateTo" binding:"omitempty,calendar_date"`
	Guests   int    `form:"guests"`
}

// AvailabilityQuery optionally restricts the blocked dates to a window.
type AvailabilityQuery struct {
	From string `form:"from" binding:"omitempty,calendar_date"`
	To   string `form:"to" binding:"omitempty,calendar_date"`
}

// CancelBookingRequest carries an optional cancellation note.
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	BookingNumber   string     `json:"booking_number"`
	VenueID         uuid.UUID  `json:"venue_id"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	Status          string     `json:"status"`
	DateFrom        string     `json:"date_from"`
	DateTo          string     `json:"date_to"`
	Nights          int        `json:"nights"`
	Guests          int        `json:"guests"`
	TotalPriceCents int64      `json:"total_price_cents"`
	Currency        string     `json:"currency"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CancelNote      string     `json:"cancel_note,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AvailabilityDTO lists the blocked calendar days of a venue.
type AvailabilityDTO struct {
	VenueID      uuid.UUID `json:"venue_id"`
	MaxGuests    int       `json:"max_guests"`
	Today        string    `json:"today"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to,omitempty"`
	BlockedDates []string  `json:"blocked_dates"`
}

// BookingStatsDTO holds aggregate booking statistics.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.BookingRepository
	venues    venueDomain.VenueRepository
	engine    *availability.Engine
	pricing   bookingDomain.PricingStrategy
	snapshots *SnapshotRegistry
	cache     SnapshotCache
	publisher EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService. cache may be nil, in which
// case every refresh reads the repository.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	venues venueDomain.VenueRepository,
	engine *availability.Engine,
	pricing bookingDomain.PricingStrategy,
	snapshots *SnapshotRegistry,
	cache SnapshotCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		venues:    venues,
		engine:    engine,
		pricing:   pricing,
		snapshots: snapshots,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// GetAvailability returns the blocked dates of a venue, optionally limited
// to an inclusive window.
func (s *BookingService) GetAvailability(ctx context.Context, venueID uuid.UUID, q AvailabilityQuery) (*AvailabilityDTO, error) {
	v, err := s.venues.FindByID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityDTO{
		VenueID:   venueID,
		MaxGuests: v.MaxGuests(),
		Today:     snap.Day,
	}

	switch {
	case q.From == "" && q.To == "":
		result.BlockedDates = snap.Set.Keys()
	case q.From == "" || q.To == "":
		return nil, domain.NewValidationError("from and to must be given together")
	default:
		window, err := s.engine.ParseRange(q.From, q.To)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid window: %v", err))
		}
		result.From = s.engine.Key(window.From)
		result.To = s.engine.Key(window.To)
		result.BlockedDates = snap.Set.Window(window)
	}
	if result.BlockedDates == nil {
		result.BlockedDates = []string{}
	}
	return result, nil
}

// CheckAvailability runs the pre-submit validation against the venue's
// current snapshot without writing anything.
func (s *BookingService) CheckAvailability(ctx context.Context, venueID uuid.UUID, authenticated bool, req CandidateRequest) (*availability.Decision, error) {
	v, err := s.venues.FindByID(ctx, venueID)
	if err != nil {
		return nil, err
	}

	candidate, err := s.parseCandidate(req.DateFrom, req.DateTo, req.Guests)
	if err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, venueID)
	if err != nil {
		return nil, err
	}

	decision := s.engine.Validate(availability.ValidationInput{
		Authenticated: authenticated,
		Candidate:     candidate,
		MaxGuests:     v.MaxGuests(),
	}, snap.Set)
	return &decision, nil
}

// SubmitBooking validates a candidate stay against the venue's snapshot and
// persists it. The repository repeats the overlap check under a venue lock;
// a conflict there invalidates the snapshot and surfaces as CONFLICT.
func (s *BookingService) SubmitBooking(ctx context.Context, customerID uuid.UUID, req SubmitBookingRequest) (*BookingDTO, error) {
	v, err := s.venues.FindByID(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if !v.IsActive() {
		return nil, domain.NewValidationError("venue is not accepting bookings")
	}

	candidate, err := s.parseCandidate(req.DateFrom, req.DateTo, req.Guests)
	if err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, v.ID())
	if err != nil {
		return nil, err
	}

	decision := s.engine.Validate(availability.ValidationInput{
		Authenticated: customerID != uuid.Nil,
		Candidate:     candidate,
		MaxGuests:     v.MaxGuests(),
	}, snap.Set)
	if !decision.Valid {
		return nil, rejectionError(decision)
	}

	stay, err := s.engine.NewRange(*candidate.From, *candidate.To)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if stay.From.Before(s.engine.Today()) {
		return nil, domain.NewValidationError("check-in date cannot be in the past").
			WithDetail("kind", string(RejectPastDates))
	}

	priceCents, err := s.pricing.Calculate(bookingDomain.PricingParams{
		Stay:              stay,
		NightlyPriceCents: v.NightlyPriceCents(),
		Guests:            candidate.Guests,
	})
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	bk, err := bookingDomain.NewBooking(v.ID(), customerID, stay, candidate.Guests, priceCents, v.Currency())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		if domain.IsConflict(err) {
			s.logger.Info("booking rejected by overlap check",
				zap.String("venue_id", v.ID().String()),
				zap.String("stay", stay.String()),
			)
			s.invalidate(ctx, v.ID())
			return nil, err
		}
		var de *domain.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.invalidate(ctx, v.ID())
	s.publishEvent(ctx, events.BookingCreated, v.ID(), events.BookingCreatedEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		VenueID:         bk.VenueID(),
		CustomerID:      bk.CustomerID(),
		DateFrom:        s.engine.Key(stay.From),
		DateTo:          s.engine.Key(stay.To),
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		OccurredAt:      time.Now().UTC(),
	})

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("venue_id", v.ID().String()),
		zap.String("stay", stay.String()),
	)

	result := s.toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels one of the customer's own bookings and releases its dates.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, customerID uuid.UUID, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if !bk.IsOwnedBy(customerID) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.invalidate(ctx, bk.VenueID())
	s.publishEvent(ctx, events.BookingCancelled, bk.VenueID(), events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		VenueID:       bk.VenueID(),
		CancelledBy:   customerID,
		Reason:        reason,
		DateFrom:      s.engine.Key(bk.Stay().From),
		DateTo:        s.engine.Key(bk.Stay().To),
		OccurredAt:    time.Now().UTC(),
	})

	result := s.toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking. Customers see their own bookings,
// venue managers the bookings of their venues, admins everything.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, callerID uuid.UUID, role auth.Role) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if role != auth.RoleAdmin && !bk.IsOwnedBy(callerID) {
		if role != auth.RoleVenueManager {
			return nil, domain.NewForbiddenError("booking does not belong to this user")
		}
		v, err := s.venues.FindByID(ctx, bk.VenueID())
		if err != nil {
			return nil, err
		}
		if !v.IsManagedBy(callerID) {
			return nil, domain.NewForbiddenError("booking does not belong to a venue you manage")
		}
	}

	result := s.toBookingDTO(bk)
	return &result, nil
}

// GetCustomerBookings retrieves paginated bookings made by a customer.
func (s *BookingService) GetCustomerBookings(ctx context.Context, customerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByCustomerID(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetVenueBookings retrieves paginated bookings of a venue for its manager.
func (s *BookingService) GetVenueBookings(ctx context.Context, venueID, managerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	v, err := s.venues.FindByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if !v.IsManagedBy(managerID) {
		return nil, domain.NewForbiddenError("venue is managed by another user")
	}

	bookings, total, err := s.repo.FindByVenueID(ctx, venueID, page, limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListAllBookings retrieves all bookings with pagination (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	result := domain.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// InvalidateVenue drops the local snapshot and the cached records of a
// venue. The booking event consumer calls it for every event it sees.
func (s *BookingService) InvalidateVenue(ctx context.Context, venueID uuid.UUID) error {
	s.snapshots.Invalidate(venueID)
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, venueID)
}

// --- Snapshots ---

// loadSnapshot returns the venue's current snapshot, refreshing it when
// missing or built on an earlier day. A refresh superseded while in flight
// still answers the request that started it but is not installed.
func (s *BookingService) loadSnapshot(ctx context.Context, venueID uuid.UUID) (*Snapshot, error) {
	today := s.engine.Key(s.engine.Today())
	if snap, ok := s.snapshots.Get(venueID); ok && snap.Day == today {
		return snap, nil
	}

	generation := s.snapshots.Begin(venueID)
	records, fromDB, err := s.fetchRecords(ctx, venueID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Set:     s.engine.Build(records),
		Records: records,
		Day:     today,
		BuiltAt: time.Now().UTC(),
	}
	if !s.snapshots.Commit(venueID, generation, snap) {
		s.logger.Debug("discarding superseded availability snapshot",
			zap.String("venue_id", venueID.String()),
		)
		return snap, nil
	}
	if fromDB {
		s.storeRecords(ctx, venueID, generation, records)
	}
	return snap, nil
}

// fetchRecords reads the venue's records from the cache, falling back to the
// repository. fromDB reports whether the repository answered.
func (s *BookingService) fetchRecords(ctx context.Context, venueID uuid.UUID) (records []availability.BookingRecord, fromDB bool, err error) {
	if s.cache != nil {
		records, err := s.cache.Get(ctx, venueID)
		if err == nil {
			return records, false, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("snapshot cache read failed, falling back to database",
				zap.String("venue_id", venueID.String()),
				zap.Error(err),
			)
		}
	}

	bookings, err := s.repo.FindActiveByVenueID(ctx, venueID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load venue bookings: %w", err)
	}
	records = make([]availability.BookingRecord, len(bookings))
	for i, bk := range bookings {
		records[i] = bk.Record()
	}
	return records, true, nil
}

// storeRecords writes freshly read records to the cache. An invalidation
// landing during the write removes the entry again.
func (s *BookingService) storeRecords(ctx context.Context, venueID uuid.UUID, generation uint64, records []availability.BookingRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Save(ctx, venueID, records); err != nil {
		s.logger.Warn("failed to cache venue snapshot",
			zap.String("venue_id", venueID.String()),
			zap.Error(err),
		)
		return
	}
	if !s.snapshots.Current(venueID, generation) {
		if err := s.cache.Invalidate(ctx, venueID); err != nil {
			s.logger.Warn("failed to drop superseded cache entry",
				zap.String("venue_id", venueID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *BookingService) invalidate(ctx context.Context, venueID uuid.UUID) {
	if err := s.InvalidateVenue(ctx, venueID); err != nil {
		s.logger.Warn("failed to invalidate venue snapshot",
			zap.String("venue_id", venueID.String()),
			zap.Error(err),
		)
	}
}

// --- Helpers ---

// parseCandidate turns request dates into engine days. Empty dates stay nil
// so the validator reports them as missing.
func (s *BookingService) parseCandidate(from, to string, guests int) (availability.Candidate, error) {
	c := availability.Candidate{Guests: guests}
	if from != "" {
		d, err := s.engine.ParseDate(from)
		if err != nil {
			return c, domain.NewValidationError(fmt.Sprintf("dateFrom: %v", err)).WithDetail("field", "dateFrom")
		}
		c.From = &d
	}
	if to != "" {
		d, err := s.engine.ParseDate(to)
		if err != nil {
			return c, domain.NewValidationError(fmt.Sprintf("dateTo: %v", err)).WithDetail("field", "dateTo")
		}
		c.To = &d
	}
	return c, nil
}

// rejectionError converts a failed Decision into a domain error carrying the
// rejection kind.
func rejectionError(d availability.Decision) error {
	var de *domain.DomainError
	if d.Kind == availability.RejectUnauthenticated {
		de = domain.NewUnauthorizedError(d.Reason)
	} else {
		de = domain.NewValidationError(d.Reason)
	}
	de.WithDetail("kind", string(d.Kind))
	if d.ConflictDate != "" {
		de.WithDetail("conflict_date", d.ConflictDate)
	}
	return de
}

func (s *BookingService) toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		VenueID:         bk.VenueID(),
		CustomerID:      bk.CustomerID(),
		Status:          string(bk.Status()),
		DateFrom:        s.engine.Key(bk.Stay().From),
		DateTo:          s.engine.Key(bk.Stay().To),
		Nights:          bk.Stay().Nights(),
		Guests:          bk.Guests(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		CancelledAt:     bk.CancelledAt(),
		CancelNote:      bk.CancelNote(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func (s *BookingService) toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, venueID uuid.UUID, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.Source, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	cloudEvent.Subject = venueID.String()

	// Keyed by venue so events of one venue stay ordered within a partition.
	if err := s.publisher.PublishEvent(ctx, events.TopicBookingEvents, venueID.String(), cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
