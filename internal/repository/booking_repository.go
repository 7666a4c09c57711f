package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/holidaze/service-booking/internal/common/domain"
	"github.com/holidaze/service-booking/internal/domain/availability"
	bookingDomain "github.com/holidaze/service-booking/internal/domain/booking"
)

// SQLSTATE codes surfaced by the bookings table constraints.
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

// ErrDatesUnavailable is the message carried by the conflict error returned
// when a new booking overlaps a confirmed one.
const ErrDatesUnavailable = "these dates are no longer available"

// BookingModel is the GORM model for the bookings table. Stay dates are
// stored as SQL dates; the engine's location is reapplied on read.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber   string     `gorm:"uniqueIndex;not null;size:20"`
	VenueID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status          string     `gorm:"not null;size:30;index"`
	DateFrom        time.Time  `gorm:"type:date;not null"`
	DateTo          time.Time  `gorm:"type:date;not null"`
	Guests          int        `gorm:"not null"`
	TotalPriceCents int64      `gorm:"not null"`
	Currency        string     `gorm:"not null;size:3;default:'NOK'"`
	CancelledAt     *time.Time `gorm:""`
	CancelNote      string     `gorm:"size:500"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db     *gorm.DB
	engine *availability.Engine
}

// NewGormBookingRepository creates a new GormBookingRepository. The engine
// decides which location stored dates are read back into.
func NewGormBookingRepository(db *gorm.DB, engine *availability.Engine) *GormBookingRepository {
	return &GormBookingRepository{db: db, engine: engine}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return r.toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return r.toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings for a specific customer with pagination.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, "customer", r.db.Where("customer_id = ?", customerID), page, limit)
}

// FindByVenueID retrieves bookings for a specific venue with pagination.
func (r *GormBookingRepository) FindByVenueID(ctx context.Context, venueID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, "venue", r.db.Where("venue_id = ?", venueID), page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, "all", r.db, page, limit)
}

func (r *GormBookingRepository) paginate(ctx context.Context, scope string, q *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s bookings: %w", scope, err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := q.Session(&gorm.Session{}).WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find %s bookings: %w", scope, err)
	}

	bookings, err := r.toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindActiveByVenueID returns all confirmed bookings of a venue ordered by
// check-in date.
func (r *GormBookingRepository) FindActiveByVenueID(ctx context.Context, venueID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("venue_id = ? AND status = ?", venueID, string(bookingDomain.StatusConfirmed)).
		Order("date_from ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find active venue bookings: %w", err)
	}
	return r.toDomainBookings(models)
}

// Save persists a new booking. The venue row is locked for the duration of
// the transaction so concurrent inserts for the same venue are serialized,
// and any confirmed booking sharing a calendar day yields a conflict. The
// exclusion constraint on the table backs the same rule.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := r.toBookingModel(bk)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue VenueModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", model.VenueID).
			First(&venue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Venue", model.VenueID.String())
			}
			return fmt.Errorf("failed to lock venue: %w", err)
		}

		var overlapping int64
		if err := tx.Model(&BookingModel{}).
			Where("venue_id = ? AND status = ? AND date_from <= ? AND date_to >= ?",
				model.VenueID, string(bookingDomain.StatusConfirmed), model.DateTo, model.DateFrom).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("failed to check overlapping bookings: %w", err)
		}
		if overlapping > 0 {
			return domain.NewConflictError(ErrDatesUnavailable)
		}

		return tx.Create(model).Error
	})
	if err == nil {
		return nil
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return domain.NewConflictError(ErrDatesUnavailable)
		case pgUniqueViolation:
			return domain.NewConflictError("booking number already exists")
		}
	}
	return fmt.Errorf("failed to save booking: %w", err)
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := r.toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row holds version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"guests":            model.Guests,
			"total_price_cents": model.TotalPriceCents,
			"cancelled_at":      model.CancelledAt,
			"cancel_note":       model.CancelNote,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

// sqlDate carries the civil date of t into a zone-free UTC midnight.
func sqlDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *GormBookingRepository) fromSQLDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return r.engine.CalendarDay(y, m, d)
}

func (r *GormBookingRepository) toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		VenueID:         bk.VenueID(),
		CustomerID:      bk.CustomerID(),
		Status:          string(bk.Status()),
		DateFrom:        sqlDate(bk.Stay().From),
		DateTo:          sqlDate(bk.Stay().To),
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

func (r *GormBookingRepository) toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := r.toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

func (r *GormBookingRepository) toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.VenueID,
		m.CustomerID,
		status,
		availability.DateRange{From: r.fromSQLDate(m.DateFrom), To: r.fromSQLDate(m.DateTo)},
		m.Guests,
		m.TotalPriceCents,
		m.Currency,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
