package availability

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the key format of a calendar day.
const DateLayout = "2006-01-02"

// localTimestampLayout reads ISO-8601 timestamps that carry no zone.
const localTimestampLayout = "2006-01-02T15:04:05.999999999"

// DefaultMaxSpanDays caps how many days a single booking may contribute to
// a BookedDateSet.
const DefaultMaxSpanDays = 365

// Engine holds the calendar settings shared by the builder and the
// validator. It is immutable after construction and safe for concurrent use.
type Engine struct {
	loc         *time.Location
	maxSpanDays int
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocation sets the time zone calendar days are taken in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithMaxSpanDays sets the per-booking enumeration cap. Non-positive values
// keep the default.
func WithMaxSpanDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.maxSpanDays = days
		}
	}
}

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used to report skipped bookings.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an Engine in UTC with the default span cap.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		loc:         time.UTC,
		maxSpanDays: DefaultMaxSpanDays,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location { return e.loc }

// MaxSpanDays returns the per-booking enumeration cap.
func (e *Engine) MaxSpanDays() int { return e.maxSpanDays }

// Day truncates t to midnight of its calendar date in the engine's location.
func (e *Engine) Day(t time.Time) time.Time {
	y, m, d := t.In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc)
}

// CalendarDay returns midnight of the civil date y-m-d in the engine's
// location. Use it to rebuild days from storage that keeps dates without
// a zone.
func (e *Engine) CalendarDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc)
}

// Key returns the "YYYY-MM-DD" key of t's calendar day.
func (e *Engine) Key(t time.Time) string {
	return e.Day(t).Format(DateLayout)
}

// Today returns the current calendar day.
func (e *Engine) Today() time.Time {
	return e.Day(e.now())
}

// ParseDate parses an ISO-8601 date ("2024-06-10") or timestamp
// ("2024-06-10T00:00:00.000Z") and returns its calendar day. A timestamp
// without a zone is read in the engine's location.
func (e *Engine) ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(s) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, s, e.loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		local, localErr := time.ParseInLocation(localTimestampLayout, s, e.loc)
		if localErr != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
		}
		t = local
	}
	return e.Day(t), nil
}

// NewRange normalizes from and to to calendar days and checks their order.
func (e *Engine) NewRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: e.Day(from), To: e.Day(to)}
	if r.To.Before(r.From) {
		return DateRange{}, ErrInvertedRange
	}
	return r, nil
}

// ParseRange parses both endpoints and checks their order.
func (e *Engine) ParseRange(from, to string) (DateRange, error) {
	f, err := e.ParseDate(from)
	if err != nil {
		return DateRange{}, fmt.Errorf("dateFrom: %w", err)
	}
	t, err := e.ParseDate(to)
	if err != nil {
		return DateRange{}, fmt.Errorf("dateTo: %w", err)
	}
	return e.NewRange(f, t)
}
