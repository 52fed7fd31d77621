package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
	"github.com/example/course-scheduler/internal/persistence/sqlite/migration"
	"github.com/example/course-scheduler/internal/timetable"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	pool, err := NewConnectionPool(DefaultConfig(":memory:"))
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := migration.NewManager(pool.DB(), nil).Run(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return pool
}

func createTestAccount(t *testing.T, pool *ConnectionPool, id, email string) {
	t.Helper()
	repo := NewAccountRepository(pool)
	err := repo.CreateAccount(context.Background(), persistence.Account{
		ID:           id,
		Email:        email,
		DisplayName:  "Test Account",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create account %s: %v", id, err)
	}
}

func createTestUnit(t *testing.T, pool *ConnectionPool, code string) persistence.Unit {
	t.Helper()
	unit, err := NewUnitRepository(pool).CreateUnit(context.Background(), persistence.Unit{
		Code:     code,
		Title:    "Test Unit",
		Credits:  6,
		Capacity: 30,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create unit %s: %v", code, err)
	}
	return unit
}

func createTestSlot(t *testing.T, pool *ConnectionPool, name string, startHour int) persistence.TimeSlot {
	t.Helper()
	slot, err := NewTimeSlotRepository(pool).CreateTimeSlot(context.Background(), persistence.TimeSlot{
		Name:      name,
		StartTime: time.Date(2000, 1, 1, startHour, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2000, 1, 1, startHour+2, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("create slot %s: %v", name, err)
	}
	return slot
}

func TestDayRepository(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewDayRepository(pool)

	days, err := repo.ListDays(context.Background())
	if err != nil {
		t.Fatalf("ListDays: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("len(days) = %d, want 7", len(days))
	}
	if days[0].Name != "Monday" || days[0].Position != 1 {
		t.Errorf("first day = %+v", days[0])
	}
	if days[6].Name != "Sunday" || days[6].Position != 7 {
		t.Errorf("last day = %+v", days[6])
	}

	if _, err := repo.GetDay(context.Background(), 99); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetDay(99) error = %v, want ErrNotFound", err)
	}
}

func TestTimeSlotRepositoryCRUD(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewTimeSlotRepository(pool)

	slot := createTestSlot(t, pool, "Morning A", 9)
	if slot.ID == 0 {
		t.Fatal("expected assigned id")
	}

	fetched, err := repo.GetTimeSlot(context.Background(), slot.ID)
	if err != nil {
		t.Fatalf("GetTimeSlot: %v", err)
	}
	if fetched.Name != "Morning A" || !fetched.StartTime.Equal(slot.StartTime) {
		t.Errorf("fetched = %+v", fetched)
	}

	fetched.Name = "Morning A (revised)"
	if _, err := repo.UpdateTimeSlot(context.Background(), fetched); err != nil {
		t.Fatalf("UpdateTimeSlot: %v", err)
	}

	fetched.IsActive = false
	if _, err := repo.UpdateTimeSlot(context.Background(), fetched); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	active, err := repo.ListTimeSlots(context.Background(), false)
	if err != nil {
		t.Fatalf("ListTimeSlots(active): %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active slots = %d, want 0", len(active))
	}

	all, err := repo.ListTimeSlots(context.Background(), true)
	if err != nil {
		t.Fatalf("ListTimeSlots(all): %v", err)
	}
	if len(all) != 1 {
		t.Errorf("all slots = %d, want 1", len(all))
	}

	if err := repo.DeleteTimeSlot(context.Background(), slot.ID); err != nil {
		t.Fatalf("DeleteTimeSlot: %v", err)
	}
	if _, err := repo.GetTimeSlot(context.Background(), slot.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetTimeSlot after delete = %v, want ErrNotFound", err)
	}
}

func TestTimeSlotRepositoryDeletePurgesRetiredSchedules(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	slots := NewTimeSlotRepository(pool)
	schedules := NewScheduleRepository(pool)
	enrollments := NewEnrollmentRepository(pool)

	unit := createTestUnit(t, pool, "CS101")
	slot := createTestSlot(t, pool, "Morning A", 9)

	schedule, err := schedules.CreateSchedule(context.Background(), persistence.Schedule{
		UnitID:       unit.ID,
		TimeSlotID:   slot.ID,
		DayID:        1,
		Semester:     "S1",
		AcademicYear: 2026,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	createTestAccount(t, pool, "student-1", "student-1@example.edu")
	if _, err := enrollments.CreateEnrollment(context.Background(), persistence.Enrollment{
		ScheduleID: schedule.ID,
		StudentID:  "student-1",
		Status:     timetable.StatusWithdrawn,
	}); err != nil {
		t.Fatalf("create enrollment: %v", err)
	}

	// A soft-deleted schedule must not pin the slot in place.
	schedule.IsActive = false
	if _, err := schedules.UpdateSchedule(context.Background(), schedule); err != nil {
		t.Fatalf("soft delete schedule: %v", err)
	}

	if err := slots.DeleteTimeSlot(context.Background(), slot.ID); err != nil {
		t.Fatalf("DeleteTimeSlot: %v", err)
	}
	if _, err := slots.GetTimeSlot(context.Background(), slot.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetTimeSlot after delete = %v, want ErrNotFound", err)
	}
	if _, err := schedules.GetSchedule(context.Background(), schedule.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("GetSchedule after delete = %v, want ErrNotFound", err)
	}
	remaining, err := enrollments.ListEnrollments(context.Background(), persistence.EnrollmentFilter{ScheduleID: &schedule.ID})
	if err != nil {
		t.Fatalf("ListEnrollments: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("enrollments after delete = %d, want 0", len(remaining))
	}
}

func TestTimeSlotRepositoryDeleteKeepsActiveReferences(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	slots := NewTimeSlotRepository(pool)
	schedules := NewScheduleRepository(pool)

	unit := createTestUnit(t, pool, "CS101")
	slot := createTestSlot(t, pool, "Morning A", 9)

	schedule, err := schedules.CreateSchedule(context.Background(), persistence.Schedule{
		UnitID:       unit.ID,
		TimeSlotID:   slot.ID,
		DayID:        1,
		Semester:     "S1",
		AcademicYear: 2026,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	if err := slots.DeleteTimeSlot(context.Background(), slot.ID); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("DeleteTimeSlot error = %v, want ErrForeignKeyViolation", err)
	}

	// The rolled-back transaction leaves both rows intact.
	if _, err := slots.GetTimeSlot(context.Background(), slot.ID); err != nil {
		t.Errorf("GetTimeSlot after failed delete: %v", err)
	}
	if _, err := schedules.GetSchedule(context.Background(), schedule.ID); err != nil {
		t.Errorf("GetSchedule after failed delete: %v", err)
	}
}

func TestTimeSlotRepositoryRejectsInvertedInterval(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewTimeSlotRepository(pool)

	_, err := repo.CreateTimeSlot(context.Background(), persistence.TimeSlot{
		Name:      "Backwards",
		StartTime: time.Date(2000, 1, 1, 11, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2000, 1, 1, 9, 0, 0, 0, time.UTC),
		IsActive:  true,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("error = %v, want ErrConstraintViolation", err)
	}
}

func TestUnitRepositoryCodeUniqueness(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewUnitRepository(pool)

	unit := createTestUnit(t, pool, "CS101")

	_, err := repo.CreateUnit(context.Background(), persistence.Unit{
		Code:     "CS101",
		Title:    "Duplicate",
		Credits:  6,
		Capacity: 20,
		IsActive: true,
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("duplicate code error = %v, want ErrDuplicate", err)
	}

	// A deactivated unit releases its code.
	unit.IsActive = false
	if _, err := repo.UpdateUnit(context.Background(), unit); err != nil {
		t.Fatalf("deactivate unit: %v", err)
	}
	if _, err := repo.CreateUnit(context.Background(), persistence.Unit{
		Code:     "CS101",
		Title:    "Replacement",
		Credits:  6,
		Capacity: 20,
		IsActive: true,
	}); err != nil {
		t.Fatalf("recreate with freed code: %v", err)
	}

	if _, err := repo.GetUnitByCode(context.Background(), "CS101"); err != nil {
		t.Fatalf("GetUnitByCode: %v", err)
	}
}

func TestScheduleRepositoryOccupancyIndex(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewScheduleRepository(pool)

	unit := createTestUnit(t, pool, "CS101")
	other := createTestUnit(t, pool, "MA201")
	slot := createTestSlot(t, pool, "Morning A", 9)

	base := persistence.Schedule{
		UnitID:       unit.ID,
		TimeSlotID:   slot.ID,
		DayID:        1,
		Semester:     "S1",
		AcademicYear: 2026,
		IsActive:     true,
	}

	first, err := repo.CreateSchedule(context.Background(), base)
	if err != nil {
		t.Fatalf("create first schedule: %v", err)
	}

	// Same weekly slot, different unit: the occupancy index rejects it.
	conflicting := base
	conflicting.UnitID = other.ID
	if _, err := repo.CreateSchedule(context.Background(), conflicting); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("occupancy conflict error = %v, want ErrDuplicate", err)
	}

	// Soft deleting frees the slot for reuse.
	first.IsActive = false
	if _, err := repo.UpdateSchedule(context.Background(), first); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := repo.CreateSchedule(context.Background(), conflicting); err != nil {
		t.Fatalf("create after soft delete: %v", err)
	}
}

func TestScheduleRepositoryFilters(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewScheduleRepository(pool)

	unit := createTestUnit(t, pool, "CS101")
	slot := createTestSlot(t, pool, "Morning A", 9)
	slotB := createTestSlot(t, pool, "Morning B", 11)

	for i, dayID := range []int64{1, 2, 3} {
		slotID := slot.ID
		if i == 2 {
			slotID = slotB.ID
		}
		if _, err := repo.CreateSchedule(context.Background(), persistence.Schedule{
			UnitID:       unit.ID,
			TimeSlotID:   slotID,
			DayID:        dayID,
			Semester:     "S1",
			AcademicYear: 2026,
			IsActive:     true,
		}); err != nil {
			t.Fatalf("create schedule %d: %v", i, err)
		}
	}

	dayID := int64(2)
	byDay, err := repo.ListSchedules(context.Background(), persistence.ScheduleFilter{DayID: &dayID})
	if err != nil {
		t.Fatalf("ListSchedules by day: %v", err)
	}
	if len(byDay) != 1 {
		t.Errorf("byDay = %d, want 1", len(byDay))
	}

	count, err := repo.CountSchedules(context.Background(), persistence.ScheduleFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("CountSchedules: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	paged, err := repo.ListSchedules(context.Background(), persistence.ScheduleFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListSchedules paged: %v", err)
	}
	if len(paged) != 2 {
		t.Errorf("paged = %d, want 2", len(paged))
	}
}

func TestEnrollmentRepositoryTally(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	repo := NewEnrollmentRepository(pool)

	unit := createTestUnit(t, pool, "CS101")
	slot := createTestSlot(t, pool, "Morning A", 9)
	schedule, err := NewScheduleRepository(pool).CreateSchedule(context.Background(), persistence.Schedule{
		UnitID:       unit.ID,
		TimeSlotID:   slot.ID,
		DayID:        1,
		Semester:     "S1",
		AcademicYear: 2026,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	students := []struct {
		id     string
		status timetable.EnrollmentStatus
	}{
		{"student-1", timetable.StatusApproved},
		{"student-2", timetable.StatusApproved},
		{"student-3", timetable.StatusPending},
		{"student-4", timetable.StatusWithdrawn},
	}
	for _, student := range students {
		createTestAccount(t, pool, student.id, student.id+"@example.edu")
		if _, err := repo.CreateEnrollment(context.Background(), persistence.Enrollment{
			ScheduleID: schedule.ID,
			StudentID:  student.id,
			Status:     student.status,
		}); err != nil {
			t.Fatalf("enroll %s: %v", student.id, err)
		}
	}

	tally, err := repo.CountEnrollmentsByStatus(context.Background(), schedule.ID)
	if err != nil {
		t.Fatalf("CountEnrollmentsByStatus: %v", err)
	}
	if tally[timetable.StatusApproved] != 2 || tally[timetable.StatusPending] != 1 || tally[timetable.StatusWithdrawn] != 1 {
		t.Errorf("tally = %v", tally)
	}
	if tally.NonTerminal() != 3 {
		t.Errorf("NonTerminal = %d, want 3", tally.NonTerminal())
	}

	studentID := "student-1"
	mine, err := repo.ListEnrollments(context.Background(), persistence.EnrollmentFilter{StudentID: &studentID})
	if err != nil {
		t.Fatalf("ListEnrollments: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("mine = %d, want 1", len(mine))
	}

	open, err := repo.ListEnrollments(context.Background(), persistence.EnrollmentFilter{
		ScheduleID: &schedule.ID,
		Statuses:   timetable.NonTerminalStatuses(),
	})
	if err != nil {
		t.Fatalf("ListEnrollments open: %v", err)
	}
	if len(open) != 3 {
		t.Errorf("open = %d, want 3", len(open))
	}
}

func TestAccountAndSessionRepositories(t *testing.T) {
	t.Parallel()
	pool := newTestPool(t)
	accounts := NewAccountRepository(pool)
	sessions := NewSessionRepository(pool)

	createTestAccount(t, pool, "account-1", "Admin@Example.edu")

	// Emails are stored lowercased.
	byEmail, err := accounts.GetAccountByEmail(context.Background(), "ADMIN@example.edu")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if byEmail.Email != "admin@example.edu" {
		t.Errorf("email = %q", byEmail.Email)
	}

	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	session, err := sessions.CreateSession(context.Background(), persistence.Session{
		ID:        "session-1",
		AccountID: "account-1",
		Token:     "token-1",
		ExpiresAt: expires,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	fetched, err := sessions.GetSession(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !fetched.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", fetched.ExpiresAt, session.ExpiresAt)
	}

	revokedAt := time.Now().UTC()
	if _, err := sessions.RevokeSession(context.Background(), "token-1", revokedAt); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	revoked, err := sessions.GetSession(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("GetSession after revoke: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Error("expected RevokedAt to be set")
	}

	stale, err := sessions.CreateSession(context.Background(), persistence.Session{
		ID:        "session-2",
		AccountID: "account-1",
		Token:     "token-2",
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession stale: %v", err)
	}
	if err := sessions.DeleteExpiredSessions(context.Background(), time.Now()); err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if _, err := sessions.GetSession(context.Background(), stale.Token); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("stale session error = %v, want ErrNotFound", err)
	}

	if err := accounts.DeleteAccount(context.Background(), "account-1"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	// Sessions cascade with their account.
	if _, err := sessions.GetSession(context.Background(), "token-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("session after account delete = %v, want ErrNotFound", err)
	}
}
