package availability

import (
	"fmt"
	"time"
)

// RejectionKind says why a candidate booking was refused.
type RejectionKind string

const (
	RejectUnauthenticated RejectionKind = "unauthenticated"
	RejectDatesRequired   RejectionKind = "dates_required"
	RejectGuestBounds     RejectionKind = "guest_bounds"
	RejectDateOrder       RejectionKind = "date_order"
	RejectDatesBooked     RejectionKind = "dates_booked"
)

// Candidate is a proposed stay that has not been submitted yet.
type Candidate struct {
	From   *time.Time
	To     *time.Time
	Guests int
}

// ValidationInput is everything Validate looks at besides the booked set.
type ValidationInput struct {
	Authenticated bool
	Candidate     Candidate
	MaxGuests     int
}

// Decision is the outcome of Validate. A rejected decision carries exactly
// one reason, from the first check that failed.
type Decision struct {
	Valid  bool          `json:"valid"`
	Kind   RejectionKind `json:"kind,omitempty"`
	Reason string        `json:"reason,omitempty"`
	// ConflictDate is the first blocked day found, set for RejectDatesBooked.
	ConflictDate string `json:"conflictDate,omitempty"`
}

func accept() Decision { return Decision{Valid: true} }

func reject(kind RejectionKind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

// Validate runs the pre-submit checks in order and stops at the first
// failure: authentication, both dates present, 0 < guests <= MaxGuests,
// end not before start, and no day of the stay in booked.
//
// booked must be the same set the caller rendered the calendar from.
func (e *Engine) Validate(in ValidationInput, booked *BookedDateSet) Decision {
	if !in.Authenticated {
		return reject(RejectUnauthenticated, "authentication required: please log in to book")
	}

	c := in.Candidate
	if c.From == nil || c.To == nil {
		return reject(RejectDatesRequired, "dates required: please select both check-in and check-out dates")
	}

	if c.Guests <= 0 || c.Guests > in.MaxGuests {
		return reject(RejectGuestBounds, fmt.Sprintf("number of guests must be between 1 and %d", in.MaxGuests))
	}

	from, to := e.Day(*c.From), e.Day(*c.To)
	if to.Before(from) {
		return reject(RejectDateOrder, "end date must be after start date")
	}

	if key, found := e.firstBlocked(from, to, booked); found {
		d := reject(RejectDatesBooked, fmt.Sprintf("dates already booked: %s is not available", key))
		d.ConflictDate = key
		return d
	}
	return accept()
}

// firstBlocked walks [from, to] day by day, the same walk Build uses, and
// returns the first key present in booked. The walk starts no earlier than
// the first blocked day and stops past the last one, so it is bounded by
// the extent of booked whatever the candidate.
func (e *Engine) firstBlocked(from, to time.Time, booked *BookedDateSet) (string, bool) {
	last := booked.Last()
	if last == "" {
		return "", false
	}
	if first, err := e.ParseDate(booked.First()); err == nil && first.After(from) {
		from = first
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(DateLayout)
		if key > last {
			return "", false
		}
		if booked.Contains(key) {
			return key, true
		}
	}
	return "", false
}
