package timetable

import "testing"

func TestOccupants(t *testing.T) {
	mondayMorning := SlotKey{TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2024}

	existing := []Booking{
		{ScheduleID: 10, UnitID: 100, Key: mondayMorning, Active: true, Label: "CS101 on Monday at Morning A"},
		{ScheduleID: 11, UnitID: 101, Key: SlotKey{TimeSlotID: 1, DayID: 2, Semester: "S1", AcademicYear: 2024}, Active: true},
		{ScheduleID: 12, UnitID: 102, Key: mondayMorning, Active: false},
	}

	t.Run("matches exact key regardless of unit", func(t *testing.T) {
		matches := Occupants(existing, mondayMorning, 0)
		if len(matches) != 1 || matches[0].ScheduleID != 10 {
			t.Fatalf("expected schedule 10 to occupy the slot, got %v", matches)
		}
	})

	t.Run("inactive bookings do not occupy", func(t *testing.T) {
		matches := Occupants(existing[2:], mondayMorning, 0)
		if len(matches) != 0 {
			t.Fatalf("expected inactive booking to be skipped, got %v", matches)
		}
	})

	t.Run("different day does not match", func(t *testing.T) {
		key := mondayMorning
		key.DayID = 2
		matches := Occupants(existing[:1], key, 0)
		if len(matches) != 0 {
			t.Fatalf("expected no occupants on a different day, got %v", matches)
		}
	})

	t.Run("different semester does not match", func(t *testing.T) {
		key := mondayMorning
		key.Semester = "S2"
		matches := Occupants(existing, key, 0)
		if len(matches) != 0 {
			t.Fatalf("expected no occupants in a different semester, got %v", matches)
		}
	})

	t.Run("different academic year does not match", func(t *testing.T) {
		key := mondayMorning
		key.AcademicYear = 2025
		matches := Occupants(existing, key, 0)
		if len(matches) != 0 {
			t.Fatalf("expected no occupants in a different year, got %v", matches)
		}
	})

	t.Run("exclusion removes the schedule itself", func(t *testing.T) {
		matches := Occupants(existing, mondayMorning, 10)
		if len(matches) != 0 {
			t.Fatalf("expected excluded schedule to be skipped, got %v", matches)
		}
	})
}

func TestDuplicateOf(t *testing.T) {
	key := SlotKey{TimeSlotID: 3, DayID: 1, Semester: "S1", AcademicYear: 2024}
	existing := []Booking{
		{ScheduleID: 20, UnitID: 100, Key: key, Active: true},
		{ScheduleID: 21, UnitID: 200, Key: key, Active: true},
	}

	t.Run("same unit and key is a duplicate", func(t *testing.T) {
		matches := DuplicateOf(existing, 100, key, 0)
		if len(matches) != 1 || matches[0].ScheduleID != 20 {
			t.Fatalf("expected schedule 20 as duplicate, got %v", matches)
		}
	})

	t.Run("different unit on the same key is not a duplicate", func(t *testing.T) {
		matches := DuplicateOf(existing, 300, key, 0)
		if len(matches) != 0 {
			t.Fatalf("expected no duplicates for unit 300, got %v", matches)
		}
	})

	t.Run("exclusion applies before the unit match", func(t *testing.T) {
		matches := DuplicateOf(existing, 100, key, 20)
		if len(matches) != 0 {
			t.Fatalf("expected excluded schedule to be skipped, got %v", matches)
		}
	})
}
