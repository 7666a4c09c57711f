package availability

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// june1 is "today" for most tests, before every June 2024 booking.
var june1 = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(func() time.Time { return june1 })}, opts...)...)
}

func date(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func candidate(from, to string, guests int) ValidationInput {
	return ValidationInput{
		Authenticated: true,
		Candidate:     Candidate{From: date(from), To: date(to), Guests: guests},
		MaxGuests:     4,
	}
}

func TestBuild_BlocksEveryDayInclusive(t *testing.T) {
	e := newTestEngine()

	set := e.Build([]BookingRecord{{ID: "b1", DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	assert.Equal(t, []string{"2024-06-10", "2024-06-11", "2024-06-12"}, set.Keys())
	assert.False(t, set.Contains("2024-06-09"))
	assert.False(t, set.Contains("2024-06-13"))
	assert.Equal(t, "2024-06-10", set.First())
	assert.Equal(t, "2024-06-12", set.Last())
}

func TestBuild_SingleDayBooking(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-10"}})

	assert.Equal(t, []string{"2024-06-10"}, set.Keys())
}

func TestBuild_AcceptsTimestamps(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{
		{DateFrom: "2024-06-10T00:00:00.000Z", DateTo: "2024-06-11T00:00:00.000Z"},
	})

	assert.Equal(t, []string{"2024-06-10", "2024-06-11"}, set.Keys())
}

func TestBuild_AcceptsTimestampsWithoutZone(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{
		{ID: "b1", DateFrom: "2024-06-10T00:00:00", DateTo: "2024-06-11T23:30:00.000"},
	})

	assert.Equal(t, []string{"2024-06-10", "2024-06-11"}, set.Keys())
}

func TestParseDate_TimestampWithoutZoneUsesEngineLocation(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)
	e := newTestEngine(WithLocation(oslo))

	got, err := e.ParseDate("2024-06-10T23:30:00")

	require.NoError(t, err)
	assert.Equal(t, "2024-06-10", got.Format(DateLayout))
	assert.Equal(t, oslo, got.Location())
}

func TestBuild_SkipsMalformed(t *testing.T) {
	tests := []struct {
		name string
		rec  BookingRecord
	}{
		{"inverted", BookingRecord{DateFrom: "2024-01-05", DateTo: "2024-01-01"}},
		{"inverted future", BookingRecord{DateFrom: "2024-07-05", DateTo: "2024-07-01"}},
		{"garbage from", BookingRecord{DateFrom: "next tuesday", DateTo: "2024-07-01"}},
		{"empty to", BookingRecord{DateFrom: "2024-07-01", DateTo: ""}},
		{"impossible day", BookingRecord{DateFrom: "2024-02-30", DateTo: "2024-03-02"}},
		{"timestamp without time", BookingRecord{DateFrom: "2024-07-01T", DateTo: "2024-07-02"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set *BookedDateSet
			require.NotPanics(t, func() {
				set = newTestEngine().Build([]BookingRecord{tt.rec})
			})
			assert.Equal(t, 0, set.Len())
		})
	}
}

func TestBuild_MalformedDoesNotAffectOthers(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{
		{ID: "bad", DateFrom: "2024-01-05", DateTo: "2024-01-01"},
		{ID: "good", DateFrom: "2024-06-20", DateTo: "2024-06-21"},
	})

	assert.Equal(t, []string{"2024-06-20", "2024-06-21"}, set.Keys())
}

func TestBuild_SkipsHistorical(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{
		{DateFrom: "2024-05-20", DateTo: "2024-05-31"},
	})

	assert.Equal(t, 0, set.Len())
}

func TestBuild_KeepsBookingEndingToday(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{
		{DateFrom: "2024-05-30", DateTo: "2024-06-01"},
	})

	assert.Equal(t, []string{"2024-05-30", "2024-05-31", "2024-06-01"}, set.Keys())
}

func TestBuild_TruncatesAtCap(t *testing.T) {
	e := newTestEngine(WithMaxSpanDays(3))

	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-30"}})

	assert.Equal(t, []string{"2024-06-10", "2024-06-11", "2024-06-12"}, set.Keys())
}

func TestBuild_DefaultCapIs365(t *testing.T) {
	set := newTestEngine().Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2026-06-10"}})

	assert.Equal(t, DefaultMaxSpanDays, set.Len())
}

func TestBuild_Idempotent(t *testing.T) {
	e := newTestEngine()
	records := []BookingRecord{
		{DateFrom: "2024-06-10", DateTo: "2024-06-12"},
		{DateFrom: "2024-06-11", DateTo: "2024-06-15"},
		{DateFrom: "bogus", DateTo: "2024-06-15"},
	}

	assert.Equal(t, e.Build(records).Keys(), e.Build(records).Keys())
}

func TestBuild_UsesEngineLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	e := newTestEngine(WithLocation(ny))

	// 02:00 UTC on the 10th is still the evening of the 9th in New York.
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10T02:00:00Z", DateTo: "2024-06-10T02:00:00Z"}})

	assert.Equal(t, []string{"2024-06-09"}, set.Keys())
}

func TestIsBlocked(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	assert.True(t, e.IsBlocked(time.Date(2024, 6, 11, 23, 59, 0, 0, time.UTC), set))
	assert.False(t, e.IsBlocked(time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC), set))
	assert.False(t, e.IsBlocked(time.Now(), nil))
}

func TestEmptySnapshot_EverythingSelectable(t *testing.T) {
	e := newTestEngine()
	set := e.Build(nil)

	for d := 0; d < 400; d++ {
		assert.False(t, e.IsBlocked(june1.AddDate(0, 0, d), set))
	}
	assert.True(t, e.Validate(candidate("2024-06-10", "2024-08-10", 2), set).Valid)
}

func TestValidate_ConcreteScenario(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	shared := e.Validate(candidate("2024-06-12", "2024-06-14", 2), set)
	assert.False(t, shared.Valid)
	assert.Equal(t, RejectDatesBooked, shared.Kind)
	assert.Equal(t, "2024-06-12", shared.ConflictDate)

	assert.True(t, e.Validate(candidate("2024-06-13", "2024-06-15", 2), set).Valid)
	assert.True(t, e.Validate(candidate("2024-06-05", "2024-06-09", 2), set).Valid)
}

func TestValidate_EnclosingCandidateConflicts(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	d := e.Validate(candidate("2024-06-01", "2024-06-30", 1), set)
	assert.Equal(t, RejectDatesBooked, d.Kind)
	assert.Equal(t, "2024-06-10", d.ConflictDate)
}

func TestValidate_GuestBounds(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		guests int
		valid  bool
	}{
		{-1, false},
		{0, false},
		{1, true},
		{4, true},
		{5, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("guests=%d", tt.guests), func(t *testing.T) {
			d := e.Validate(candidate("2024-06-10", "2024-06-12", tt.guests), nil)
			assert.Equal(t, tt.valid, d.Valid)
			if !tt.valid {
				assert.Equal(t, RejectGuestBounds, d.Kind)
				assert.Contains(t, d.Reason, "4")
			}
		})
	}
}

func TestValidate_DateOrder(t *testing.T) {
	e := newTestEngine()

	before := e.Validate(candidate("2024-06-12", "2024-06-11", 1), nil)
	assert.Equal(t, RejectDateOrder, before.Kind)

	assert.True(t, e.Validate(candidate("2024-06-12", "2024-06-12", 1), nil).Valid)
}

func TestValidate_SameDayDifferentClockTimes(t *testing.T) {
	e := newTestEngine()
	from := time.Date(2024, 6, 12, 18, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)

	d := e.Validate(ValidationInput{
		Authenticated: true,
		Candidate:     Candidate{From: &from, To: &to, Guests: 1},
		MaxGuests:     1,
	}, nil)

	assert.True(t, d.Valid)
}

func TestValidate_CheckOrder(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	// Every check would fail; the first one wins.
	in := ValidationInput{Candidate: Candidate{From: date("2024-06-12"), Guests: 0}, MaxGuests: 4}
	assert.Equal(t, RejectUnauthenticated, e.Validate(in, set).Kind)

	in.Authenticated = true
	assert.Equal(t, RejectDatesRequired, e.Validate(in, set).Kind)

	in.Candidate.To = date("2024-06-11")
	assert.Equal(t, RejectGuestBounds, e.Validate(in, set).Kind)

	in.Candidate.Guests = 2
	assert.Equal(t, RejectDateOrder, e.Validate(in, set).Kind)

	in.Candidate.To = date("2024-06-14")
	assert.Equal(t, RejectDatesBooked, e.Validate(in, set).Kind)
}

func TestValidate_MissingEitherDate(t *testing.T) {
	e := newTestEngine()
	in := candidate("2024-06-10", "2024-06-12", 1)

	in.Candidate.From = nil
	assert.Equal(t, RejectDatesRequired, e.Validate(in, nil).Kind)

	in = candidate("2024-06-10", "2024-06-12", 1)
	in.Candidate.To = nil
	assert.Equal(t, RejectDatesRequired, e.Validate(in, nil).Kind)
}

func TestValidate_LongCandidateBeyondLastBlockedDay(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	assert.True(t, e.Validate(candidate("2024-06-13", "2034-06-13", 1), set).Valid)
}

func TestValidate_CandidateFromYearOne(t *testing.T) {
	e := NewEngine(WithClock(func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }))
	set := e.Build([]BookingRecord{{DateFrom: "2027-01-01", DateTo: "2027-01-02"}})
	assert.Equal(t, "2027-01-01", set.First())

	start := time.Now()
	d := e.Validate(candidate("0001-01-01", "2027-01-01", 1), set)
	elapsed := time.Since(start)

	assert.Equal(t, RejectDatesBooked, d.Kind)
	assert.Equal(t, "2027-01-01", d.ConflictDate)
	assert.Less(t, elapsed, 10*time.Millisecond)

	d = e.Validate(candidate("0001-01-01", "2026-12-31", 1), set)
	assert.True(t, d.Valid)
}

func TestValidate_WalkStartsAtFirstBlockedDay(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{
		{DateFrom: "2024-06-10", DateTo: "2024-06-10"},
		{DateFrom: "2024-06-20", DateTo: "2024-06-21"},
	})

	assert.Equal(t, "2024-06-10", e.Validate(candidate("1999-01-01", "2024-06-30", 1), set).ConflictDate)
	assert.Equal(t, "2024-06-20", e.Validate(candidate("2024-06-11", "2024-06-30", 1), set).ConflictDate)
	assert.True(t, e.Validate(candidate("2024-06-11", "2024-06-19", 1), set).Valid)
}

func TestOverlaps_AgreesWithEnumeration(t *testing.T) {
	e := newTestEngine()
	existing, err := e.ParseRange("2024-06-10", "2024-06-12")
	require.NoError(t, err)
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-12"}})

	base := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	for start := 0; start < 12; start++ {
		for length := 0; length < 6; length++ {
			from := base.AddDate(0, 0, start)
			to := from.AddDate(0, 0, length)
			r, err := e.NewRange(from, to)
			require.NoError(t, err)

			in := ValidationInput{Authenticated: true, Candidate: Candidate{From: &from, To: &to, Guests: 1}, MaxGuests: 1}
			conflicted := e.Validate(in, set).Kind == RejectDatesBooked

			assert.Equal(t, r.Overlaps(existing), conflicted, "range %s", r)
			assert.Equal(t, r.Overlaps(existing), existing.Overlaps(r), "symmetry for %s", r)
		}
	}
}

func TestOverlaps_TouchingRangesConflict(t *testing.T) {
	e := newTestEngine()
	a, err := e.ParseRange("2024-06-10", "2024-06-12")
	require.NoError(t, err)
	b, err := e.ParseRange("2024-06-12", "2024-06-14")
	require.NoError(t, err)
	c, err := e.ParseRange("2024-06-13", "2024-06-14")
	require.NoError(t, err)

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestDateRange_Counts(t *testing.T) {
	e := newTestEngine()
	r, err := e.ParseRange("2024-06-10", "2024-06-12")
	require.NoError(t, err)

	assert.Equal(t, 3, r.Days())
	assert.Equal(t, 2, r.Nights())
	assert.Equal(t, "2024-06-10..2024-06-12", r.String())
	assert.True(t, r.Contains(e.Day(time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC))))
}

func TestDateRange_DaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	e := newTestEngine(WithLocation(ny))

	r, err := e.ParseRange("2024-03-09", "2024-03-11")
	require.NoError(t, err)

	assert.Equal(t, 3, r.Days())
	set := e.Build([]BookingRecord{{DateFrom: "2024-03-09", DateTo: "2024-03-11"}})
	assert.Equal(t, 0, set.Len(), "historical relative to june1")
}

func TestNewRange_Inverted(t *testing.T) {
	_, err := newTestEngine().ParseRange("2024-01-05", "2024-01-01")
	assert.ErrorIs(t, err, ErrInvertedRange)
}

func TestWindow(t *testing.T) {
	e := newTestEngine()
	set := e.Build([]BookingRecord{{DateFrom: "2024-06-10", DateTo: "2024-06-20"}})
	w, err := e.ParseRange("2024-06-18", "2024-06-25")
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-06-18", "2024-06-19", "2024-06-20"}, set.Window(w))
	assert.Empty(t, (*BookedDateSet)(nil).Window(w))
}
