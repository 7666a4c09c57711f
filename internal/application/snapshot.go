package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holidaze/service-booking/internal/domain/availability"
)

// Snapshot is one built view of a venue's confirmed bookings. It is never
// modified after it is committed.
type Snapshot struct {
	Set     *availability.BookedDateSet
	Records []availability.BookingRecord
	// Day is the calendar day the set was built against. Historical
	// filtering depends on it, so a snapshot from an earlier day is stale.
	Day     string
	BuiltAt time.Time
}

type venueSlot struct {
	generation uint64
	current    *Snapshot
}

// SnapshotRegistry holds the latest snapshot per venue. Refreshes are
// fenced by a per-venue generation: Begin hands out a generation, and a
// Commit is applied only if no newer Begin or Invalidate happened since.
// This keeps a slow fetch from overwriting newer state.
type SnapshotRegistry struct {
	mu     sync.Mutex
	venues map[uuid.UUID]*venueSlot
}

// NewSnapshotRegistry creates an empty registry.
func NewSnapshotRegistry() *SnapshotRegistry {
	return &SnapshotRegistry{venues: make(map[uuid.UUID]*venueSlot)}
}

func (r *SnapshotRegistry) slot(venueID uuid.UUID) *venueSlot {
	s, ok := r.venues[venueID]
	if !ok {
		s = &venueSlot{}
		r.venues[venueID] = s
	}
	return s
}

// Get returns the committed snapshot of a venue, if any.
func (r *SnapshotRegistry) Get(venueID uuid.UUID) (*Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.venues[venueID]
	if !ok || s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Begin starts a refresh of venueID and returns its generation.
func (r *SnapshotRegistry) Begin(venueID uuid.UUID) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slot(venueID)
	s.generation++
	return s.generation
}

// Commit installs snap if generation is still the latest for the venue and
// reports whether it did.
func (r *SnapshotRegistry) Commit(venueID uuid.UUID, generation uint64, snap *Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slot(venueID)
	if s.generation != generation {
		return false
	}
	s.current = snap
	return true
}

// Current reports whether generation is still the latest for the venue.
func (r *SnapshotRegistry) Current(venueID uuid.UUID, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.venues[venueID]
	return ok && s.generation == generation
}

// Invalidate drops the snapshot of a venue and supersedes any refresh in flight.
func (r *SnapshotRegistry) Invalidate(venueID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.slot(venueID)
	s.generation++
	s.current = nil
}

// Len returns the number of venues holding a committed snapshot.
func (r *SnapshotRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.venues {
		if s.current != nil {
			n++
		}
	}
	return n
}
