package timetable

// SlotKey identifies the weekly slot a schedule occupies.
type SlotKey struct {
	TimeSlotID   int64
	DayID        int64
	Semester     string
	AcademicYear int
}

// Booking represents an active schedule's claim on a weekly slot.
type Booking struct {
	ScheduleID int64
	UnitID     int64
	Key        SlotKey
	Active     bool
	// Label is a display string ("CS101 on Monday at Morning A") used when
	// conflicts are reported back to callers.
	Label string
}

// Occupants returns every active booking that occupies the given slot key,
// excluding the booking with excludeID when non-zero. Matching is exact
// equality of all four key components regardless of unit.
func Occupants(existing []Booking, key SlotKey, excludeID int64) []Booking {
	var matches []Booking
	for _, booking := range existing {
		if !booking.Active {
			continue
		}
		if excludeID != 0 && booking.ScheduleID == excludeID {
			continue
		}
		if booking.Key == key {
			matches = append(matches, booking)
		}
	}
	return matches
}

// DuplicateOf returns every active booking that matches both the slot key and
// the unit, excluding excludeID when non-zero. This backs the stricter
// "schedule already exists for this combination" rule, distinct from the
// unit-agnostic occupancy rule above.
func DuplicateOf(existing []Booking, unitID int64, key SlotKey, excludeID int64) []Booking {
	var matches []Booking
	for _, booking := range Occupants(existing, key, excludeID) {
		if booking.UnitID == unitID {
			matches = append(matches, booking)
		}
	}
	return matches
}
