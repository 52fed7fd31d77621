package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/course-scheduler/internal/persistence/sqlite"
	"github.com/example/course-scheduler/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary migrated
// SQLite database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool        *sqlite.ConnectionPool
	Accounts    *sqlite.AccountRepository
	Sessions    *sqlite.SessionRepository
	Days        *sqlite.DayRepository
	TimeSlots   *sqlite.TimeSlotRepository
	Units       *sqlite.UnitRepository
	Schedules   *sqlite.ScheduleRepository
	Enrollments *sqlite.EnrollmentRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary database file
// that is migrated automatically. Callers may optionally invoke Close, but the
// helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "timetable.db")
	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := migration.NewManager(pool.DB(), nil).Run(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:        pool,
		Accounts:    sqlite.NewAccountRepository(pool),
		Sessions:    sqlite.NewSessionRepository(pool),
		Days:        sqlite.NewDayRepository(pool),
		TimeSlots:   sqlite.NewTimeSlotRepository(pool),
		Units:       sqlite.NewUnitRepository(pool),
		Schedules:   sqlite.NewScheduleRepository(pool),
		Enrollments: sqlite.NewEnrollmentRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
