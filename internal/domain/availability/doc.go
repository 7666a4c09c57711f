// Package availability decides which calendar days of a venue are taken and
// whether a proposed stay may be submitted.
//
// Everything here works at calendar-day granularity. A time is reduced to
// midnight of its date in the engine's location before it is compared, and
// days are keyed as "YYYY-MM-DD". Ranges are inclusive at both ends, so a
// stay ending on the 12th and another starting on the 12th collide.
//
// The package performs no I/O. Callers fetch a venue's bookings, build a
// BookedDateSet once per snapshot, and hand that same set to both the
// calendar (IsBlocked) and the submit path (Validate).
package availability
