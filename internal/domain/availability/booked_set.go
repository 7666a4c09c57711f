package availability

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// BookingRecord is one existing booking as delivered by the bookings store
// or an upstream feed. Dates are ISO-8601 strings and may be malformed.
type BookingRecord struct {
	ID       string `json:"id"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Guests   int    `json:"guests"`
}

// BookedDateSet is the set of blocked calendar days of one venue. It is
// never modified after Build returns; a nil set blocks nothing.
type BookedDateSet struct {
	days  map[string]struct{}
	first string
	last  string
}

// Contains reports whether key ("YYYY-MM-DD") is blocked.
func (s *BookedDateSet) Contains(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.days[key]
	return ok
}

// Len returns the number of blocked days.
func (s *BookedDateSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.days)
}

// First returns the earliest blocked key, or "" for an empty set.
func (s *BookedDateSet) First() string {
	if s == nil {
		return ""
	}
	return s.first
}

// Last returns the latest blocked key, or "" for an empty set.
func (s *BookedDateSet) Last() string {
	if s == nil {
		return ""
	}
	return s.last
}

// Keys returns every blocked key in ascending order.
func (s *BookedDateSet) Keys() []string {
	if s == nil {
		return []string{}
	}
	keys := make([]string, 0, len(s.days))
	for k := range s.days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Window returns the blocked keys inside r in ascending order.
func (s *BookedDateSet) Window(r DateRange) []string {
	from, to := r.From.Format(DateLayout), r.To.Format(DateLayout)
	keys := []string{}
	for _, k := range s.Keys() {
		if k >= from && k <= to {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *BookedDateSet) add(key string) {
	s.days[key] = struct{}{}
	if s.first == "" || key < s.first {
		s.first = key
	}
	if key > s.last {
		s.last = key
	}
}

// Build materializes the blocked days of a booking snapshot.
//
// Records with unparseable or inverted dates are skipped, as are records
// that ended before today. Every other record blocks each day from dateFrom
// to dateTo inclusive, up to MaxSpanDays days.
func (e *Engine) Build(records []BookingRecord) *BookedDateSet {
	set := &BookedDateSet{days: make(map[string]struct{})}
	today := e.Today()

	for _, rec := range records {
		r, err := e.ParseRange(rec.DateFrom, rec.DateTo)
		if err != nil {
			e.logger.Debug("skipping malformed booking",
				zap.String("booking_id", rec.ID),
				zap.String("date_from", rec.DateFrom),
				zap.String("date_to", rec.DateTo),
				zap.Error(err),
			)
			continue
		}
		if r.To.Before(today) {
			continue
		}

		day := r.From
		for n := 0; n < e.maxSpanDays && !day.After(r.To); n++ {
			set.add(day.Format(DateLayout))
			day = day.AddDate(0, 0, 1)
		}
		if !day.After(r.To) {
			e.logger.Debug("booking span truncated",
				zap.String("booking_id", rec.ID),
				zap.String("range", r.String()),
				zap.Int("max_span_days", e.maxSpanDays),
			)
		}
	}
	return set
}

// IsBlocked reports whether date's calendar day is in set.
func (e *Engine) IsBlocked(date time.Time, set *BookedDateSet) bool {
	return set.Contains(e.Key(date))
}
