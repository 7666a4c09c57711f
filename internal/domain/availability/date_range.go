package availability

import (
	"errors"
	"time"
)

// ErrInvertedRange is returned when a range ends before it starts.
var ErrInvertedRange = errors.New("end date precedes start date")

// DateRange is an inclusive span of calendar days. Build it with
// Engine.NewRange or Engine.ParseRange so both ends are normalized.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Overlaps reports whether r and o share at least one calendar day.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.From.After(o.To) && !r.To.Before(o.From)
}

// Contains reports whether day falls inside r. day must be normalized.
func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.From) && !day.After(r.To)
}

// Days returns the number of calendar days in r, counting both ends.
func (r DateRange) Days() int {
	return civilDaysBetween(r.From, r.To) + 1
}

// Nights returns the number of nights stayed, Days()-1.
func (r DateRange) Nights() int {
	return r.Days() - 1
}

// String formats r as "from..to".
func (r DateRange) String() string {
	return r.From.Format(DateLayout) + ".." + r.To.Format(DateLayout)
}

// civilDaysBetween counts whole days from a to b by their wall-clock dates,
// which keeps DST transitions from skewing the result.
func civilDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
