package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/course-scheduler/internal/timetable"
)

func catalogFixtures() (*unitCatalogStub, *slotCatalogStub, *dayRepoStub) {
	units := &unitCatalogStub{units: map[int64]Unit{
		1: {ID: 1, Code: "CS101", Title: "Intro to Computing", Credits: 10, Capacity: 30, IsActive: true},
		2: {ID: 2, Code: "MA201", Title: "Linear Algebra", Credits: 15, Capacity: 25, IsActive: true},
		3: {ID: 3, Code: "HI300", Title: "Retired Unit", Credits: 10, Capacity: 20, IsActive: false},
	}}
	slots := &slotCatalogStub{slots: map[int64]TimeSlot{
		1: slotAt(1, "Morning A", 9, 11, true),
		2: slotAt(2, "Afternoon A", 13, 15, true),
		3: slotAt(3, "Retired Slot", 18, 20, false),
	}}
	days := &dayRepoStub{days: map[int64]Day{
		1: {ID: 1, Name: "Monday", Position: 1},
		2: {ID: 2, Name: "Tuesday", Position: 2},
	}}
	return units, slots, days
}

func newScheduleService(repo *scheduleRepoStub, bookings *bookingsStub, tally *tallyStub) *ScheduleService {
	units, slots, days := catalogFixtures()
	if bookings == nil {
		bookings = &bookingsStub{}
	}
	if tally == nil {
		tally = &tallyStub{}
	}
	return NewScheduleService(repo, units, slots, days, bookings, tally, fixedNow)
}

func adminPrincipal() Principal {
	return Principal{AccountID: "admin-1", IsAdmin: true}
}

func scheduleInput() ScheduleInput {
	return ScheduleInput{
		UnitID:       1,
		TimeSlotID:   1,
		DayID:        1,
		Semester:     "S1",
		AcademicYear: 2026,
	}
}

func TestScheduleService_CreateSchedule(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := newScheduleService(&scheduleRepoStub{}, nil, nil)

		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: Principal{AccountID: "student-1"},
			Input:     scheduleInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := newScheduleService(&scheduleRepoStub{}, nil, nil)

		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal(),
			Input:     ScheduleInput{},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"unit_id", "time_slot_id", "day_id", "semester", "academic_year"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects missing or inactive references", func(t *testing.T) {
		svc := newScheduleService(&scheduleRepoStub{}, nil, nil)

		cases := map[string]ScheduleInput{
			"unknown unit":   {UnitID: 99, TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026},
			"inactive unit":  {UnitID: 3, TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026},
			"unknown slot":   {UnitID: 1, TimeSlotID: 99, DayID: 1, Semester: "S1", AcademicYear: 2026},
			"inactive slot":  {UnitID: 1, TimeSlotID: 3, DayID: 1, Semester: "S1", AcademicYear: 2026},
			"unknown day":    {UnitID: 1, TimeSlotID: 1, DayID: 99, Semester: "S1", AcademicYear: 2026},
		}
		for name, input := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
					Principal: adminPrincipal(),
					Input:     input,
				})
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
			})
		}
	})

	t.Run("rejects a duplicate tuple with the specific message", func(t *testing.T) {
		key := timetable.SlotKey{TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026}
		bookings := &bookingsStub{bookings: []timetable.Booking{
			{ScheduleID: 10, UnitID: 1, Key: key, Active: true, Label: "CS101 on Monday at Morning A"},
		}}
		svc := newScheduleService(&scheduleRepoStub{}, bookings, nil)

		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal(),
			Input:     scheduleInput(),
		})

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if want := "Schedule already exists for this combination"; cErr.Message != want {
			t.Fatalf("message = %q, want %q", cErr.Message, want)
		}
	})

	t.Run("rejects an occupied slot regardless of unit", func(t *testing.T) {
		key := timetable.SlotKey{TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026}
		bookings := &bookingsStub{bookings: []timetable.Booking{
			{ScheduleID: 10, UnitID: 1, Key: key, Active: true, Label: "CS101 on Monday at Morning A"},
		}}
		svc := newScheduleService(&scheduleRepoStub{}, bookings, nil)

		input := scheduleInput()
		input.UnitID = 2
		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal(),
			Input:     input,
		})

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if want := "schedule conflicts with: CS101 on Monday at Morning A"; cErr.Message != want {
			t.Fatalf("message = %q, want %q", cErr.Message, want)
		}
	})

	t.Run("same slot on a different day succeeds", func(t *testing.T) {
		key := timetable.SlotKey{TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026}
		bookings := &bookingsStub{bookings: []timetable.Booking{
			{ScheduleID: 10, UnitID: 1, Key: key, Active: true, Label: "CS101 on Monday at Morning A"},
		}}
		repo := &scheduleRepoStub{}
		svc := newScheduleService(repo, bookings, nil)

		input := scheduleInput()
		input.UnitID = 2
		input.DayID = 2
		schedule, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal(),
			Input:     input,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !schedule.IsActive {
			t.Fatal("expected new schedule to be active")
		}
		if schedule.Day.Name != "Tuesday" {
			t.Fatalf("day = %q, want Tuesday", schedule.Day.Name)
		}
	})

	t.Run("rejects non-positive capacity override", func(t *testing.T) {
		svc := newScheduleService(&scheduleRepoStub{}, nil, nil)

		zero := 0
		input := scheduleInput()
		input.MaxCapacity = &zero
		_, err := svc.CreateSchedule(context.Background(), CreateScheduleParams{
			Principal: adminPrincipal(),
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["max_capacity"]; !ok {
			t.Fatalf("expected max_capacity validation error, got %v", vErr.FieldErrors)
		}
	})
}

func seededSchedule(id int64) Schedule {
	return Schedule{
		ID:           id,
		Unit:         Unit{ID: 1, Code: "CS101", Capacity: 30, IsActive: true},
		TimeSlot:     slotAt(1, "Morning A", 9, 11, true),
		Day:          Day{ID: 1, Name: "Monday", Position: 1},
		Semester:     "S1",
		AcademicYear: 2026,
		IsActive:     true,
	}
}

func TestScheduleService_UpdateSchedule(t *testing.T) {
	t.Run("time and day immutable under open enrollments", func(t *testing.T) {
		repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
		tally := &tallyStub{tallies: map[int64]timetable.StatusTally{
			1: {timetable.StatusPending: 1, timetable.StatusApproved: 2},
		}}
		svc := newScheduleService(repo, nil, tally)

		newDay := int64(2)
		_, err := svc.UpdateSchedule(context.Background(), UpdateScheduleParams{
			Principal:  adminPrincipal(),
			ScheduleID: 1,
			Input:      ScheduleUpdateInput{DayID: &newDay},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["schedule"]; !ok {
			t.Fatalf("expected schedule validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("time and day may change once enrollments are terminal", func(t *testing.T) {
		repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
		tally := &tallyStub{tallies: map[int64]timetable.StatusTally{
			1: {timetable.StatusWithdrawn: 4},
		}}
		svc := newScheduleService(repo, nil, tally)

		newDay := int64(2)
		updated, err := svc.UpdateSchedule(context.Background(), UpdateScheduleParams{
			Principal:  adminPrincipal(),
			ScheduleID: 1,
			Input:      ScheduleUpdateInput{DayID: &newDay},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Day.ID != 2 {
			t.Fatalf("day id = %d, want 2", updated.Day.ID)
		}
	})

	t.Run("capacity may not drop below approved count", func(t *testing.T) {
		repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
		tally := &tallyStub{tallies: map[int64]timetable.StatusTally{
			1: {timetable.StatusApproved: 12},
		}}
		svc := newScheduleService(repo, nil, tally)

		ten := 10
		_, err := svc.UpdateSchedule(context.Background(), UpdateScheduleParams{
			Principal:  adminPrincipal(),
			ScheduleID: 1,
			Input:      ScheduleUpdateInput{MaxCapacity: &ten},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if got, want := vErr.FieldErrors["max_capacity"], "capacity cannot be below the current approved enrollment count (12)"; got != want {
			t.Fatalf("message = %q, want %q", got, want)
		}
	})

	t.Run("re-runs the occupancy check against the new key excluding itself", func(t *testing.T) {
		repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
		bookings := &bookingsStub{bookings: []timetable.Booking{
			{ScheduleID: 1, UnitID: 1, Key: timetable.SlotKey{TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026}, Active: true, Label: "CS101 on Monday at Morning A"},
			{ScheduleID: 2, UnitID: 2, Key: timetable.SlotKey{TimeSlotID: 1, DayID: 2, Semester: "S1", AcademicYear: 2026}, Active: true, Label: "MA201 on Tuesday at Morning A"},
		}}
		svc := newScheduleService(repo, bookings, nil)

		newDay := int64(2)
		_, err := svc.UpdateSchedule(context.Background(), UpdateScheduleParams{
			Principal:  adminPrincipal(),
			ScheduleID: 1,
			Input:      ScheduleUpdateInput{DayID: &newDay},
		})

		var cErr *ConflictError
		if !errors.As(err, &cErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if want := "schedule conflicts with: MA201 on Tuesday at Morning A"; cErr.Message != want {
			t.Fatalf("message = %q, want %q", cErr.Message, want)
		}
	})
}

func TestScheduleService_DeleteSchedule(t *testing.T) {
	t.Run("blocked while non-terminal enrollments remain", func(t *testing.T) {
		repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
		tally := &tallyStub{tallies: map[int64]timetable.StatusTally{
			1: {timetable.StatusWaitlisted: 3},
		}}
		svc := newScheduleService(repo, nil, tally)

		err := svc.DeleteSchedule(context.Background(), adminPrincipal(), 1)

		var pErr *PreconditionError
		if !errors.As(err, &pErr) {
			t.Fatalf("expected PreconditionError, got %v", err)
		}
		if want := "schedule has 3 unresolved enrollment(s)"; pErr.Message != want {
			t.Fatalf("message = %q, want %q", pErr.Message, want)
		}
	})

	t.Run("soft deletes once enrollments are settled", func(t *testing.T) {
		repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
		svc := newScheduleService(repo, nil, &tallyStub{})

		if err := svc.DeleteSchedule(context.Background(), adminPrincipal(), 1); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		stored, err := repo.GetSchedule(context.Background(), 1)
		if err != nil {
			t.Fatalf("schedule disappeared: %v", err)
		}
		if stored.IsActive {
			t.Fatal("expected schedule to be soft deleted")
		}
	})
}

func TestScheduleService_CheckConflict(t *testing.T) {
	key := timetable.SlotKey{TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026}
	bookings := &bookingsStub{bookings: []timetable.Booking{
		{ScheduleID: 10, UnitID: 1, Key: key, Active: true, Label: "CS101 on Monday at Morning A"},
	}}
	svc := newScheduleService(&scheduleRepoStub{}, bookings, nil)

	t.Run("occupied slot reports a conflict without failing", func(t *testing.T) {
		result, err := svc.CheckConflict(context.Background(), ConflictCheckParams{
			TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !result.HasConflict {
			t.Fatal("expected a conflict")
		}
		if want := "schedule conflicts with: CS101 on Monday at Morning A"; result.Message != want {
			t.Fatalf("message = %q, want %q", result.Message, want)
		}
	})

	t.Run("free slot reports no conflict", func(t *testing.T) {
		result, err := svc.CheckConflict(context.Background(), ConflictCheckParams{
			TimeSlotID: 2, DayID: 1, Semester: "S1", AcademicYear: 2026,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if result.HasConflict {
			t.Fatalf("expected no conflict, got %+v", result)
		}
	})

	t.Run("excluding the occupant clears the conflict", func(t *testing.T) {
		result, err := svc.CheckConflict(context.Background(), ConflictCheckParams{
			TimeSlotID: 1, DayID: 1, Semester: "S1", AcademicYear: 2026, ExcludeID: 10,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if result.HasConflict {
			t.Fatalf("expected no conflict, got %+v", result)
		}
	})

	t.Run("rejects incomplete probes", func(t *testing.T) {
		_, err := svc.CheckConflict(context.Background(), ConflictCheckParams{TimeSlotID: 1})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestScheduleService_AvailableSchedules(t *testing.T) {
	full := seededSchedule(1)
	open := seededSchedule(2)
	open.TimeSlot = slotAt(2, "Afternoon A", 13, 15, true)

	repo := &scheduleRepoStub{nextID: 2, schedules: []Schedule{full, open}}
	tally := &tallyStub{tallies: map[int64]timetable.StatusTally{
		1: {timetable.StatusApproved: 30},
		2: {timetable.StatusApproved: 29},
	}}
	svc := newScheduleService(repo, nil, tally)

	available, err := svc.AvailableSchedules(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(available) != 1 {
		t.Fatalf("expected 1 available schedule, got %d", len(available))
	}
	if available[0].Schedule.ID != 2 {
		t.Fatalf("available schedule id = %d, want 2", available[0].Schedule.ID)
	}
	if available[0].Stats.AvailableSpots != 1 {
		t.Fatalf("available spots = %d, want 1", available[0].Stats.AvailableSpots)
	}
}

func TestScheduleService_ListSchedules(t *testing.T) {
	first := seededSchedule(1)
	second := seededSchedule(2)
	second.Day = Day{ID: 2, Name: "Tuesday", Position: 2}
	inactive := seededSchedule(3)
	inactive.IsActive = false

	repo := &scheduleRepoStub{nextID: 3, schedules: []Schedule{first, second, inactive}}
	svc := newScheduleService(repo, nil, nil)

	t.Run("active only by default", func(t *testing.T) {
		page, err := svc.ListSchedules(context.Background(), ListSchedulesParams{})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if page.Total != 2 || len(page.Schedules) != 2 {
			t.Fatalf("page = total %d len %d, want 2/2", page.Total, len(page.Schedules))
		}
		if page.Page != 1 || page.Limit != 20 {
			t.Fatalf("pagination defaults = page %d limit %d, want 1/20", page.Page, page.Limit)
		}
	})

	t.Run("pagination clamps the limit", func(t *testing.T) {
		page, err := svc.ListSchedules(context.Background(), ListSchedulesParams{Page: 1, Limit: 10_000})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if page.Limit != 100 {
			t.Fatalf("limit = %d, want 100", page.Limit)
		}
	})

	t.Run("filters by day", func(t *testing.T) {
		day := int64(2)
		page, err := svc.ListSchedules(context.Background(), ListSchedulesParams{DayID: &day})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if page.Total != 1 || page.Schedules[0].Schedule.ID != 2 {
			t.Fatalf("expected only schedule 2, got %+v", page)
		}
	})
}

func TestScheduleService_OverviewStats(t *testing.T) {
	first := seededSchedule(1)
	second := seededSchedule(2)
	override := 10
	second.MaxCapacity = &override
	inactive := seededSchedule(3)
	inactive.IsActive = false

	repo := &scheduleRepoStub{nextID: 3, schedules: []Schedule{first, second, inactive}}
	tally := &tallyStub{tallies: map[int64]timetable.StatusTally{
		1: {timetable.StatusApproved: 30},
		2: {},
	}}
	svc := newScheduleService(repo, nil, tally)

	t.Run("requires administrator privileges", func(t *testing.T) {
		if _, err := svc.OverviewStats(context.Background(), Principal{AccountID: "student-1"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("aggregates capacity across active schedules", func(t *testing.T) {
		stats, err := svc.OverviewStats(context.Background(), adminPrincipal())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if stats.TotalSchedules != 3 || stats.ActiveSchedules != 2 {
			t.Fatalf("counts = %+v, want total=3 active=2", stats)
		}
		if stats.TotalCapacity != 40 || stats.TotalApproved != 30 {
			t.Fatalf("capacity = %d approved = %d, want 40/30", stats.TotalCapacity, stats.TotalApproved)
		}
		if stats.FullSchedules != 1 || stats.EmptySchedules != 1 {
			t.Fatalf("full = %d empty = %d, want 1/1", stats.FullSchedules, stats.EmptySchedules)
		}
		if stats.UtilizationPct != 75 {
			t.Fatalf("utilization = %d, want 75", stats.UtilizationPct)
		}
	})
}

func TestScheduleService_MeetingDates(t *testing.T) {
	repo := &scheduleRepoStub{nextID: 1, schedules: []Schedule{seededSchedule(1)}}
	svc := newScheduleService(repo, nil, nil)

	from := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, time.September, 30, 23, 59, 59, 0, time.UTC)

	occurrences, err := svc.MeetingDates(context.Background(), 1, from, until)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	// Mondays in September 2026: 7th, 14th, 21st, 28th.
	if len(occurrences) != 4 {
		t.Fatalf("expected 4 meetings, got %d", len(occurrences))
	}
	want := time.Date(2026, time.September, 7, 9, 0, 0, 0, time.UTC)
	if !occurrences[0].Start.Equal(want) {
		t.Fatalf("first meeting start = %v, want %v", occurrences[0].Start, want)
	}
}
