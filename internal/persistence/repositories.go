package persistence

import (
	"context"
	"time"

	"github.com/example/course-scheduler/internal/timetable"
)

// AccountRepository exposes CRUD operations for accounts.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account Account) error
	UpdateAccount(ctx context.Context, account Account) error
	GetAccount(ctx context.Context, id string) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// DayRepository exposes the seeded weekday reference data.
type DayRepository interface {
	GetDay(ctx context.Context, id int64) (Day, error)
	ListDays(ctx context.Context) ([]Day, error)
}

// TimeSlotRepository exposes CRUD operations for time slots.
type TimeSlotRepository interface {
	CreateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error)
	GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id int64) error
	ListTimeSlots(ctx context.Context, includeInactive bool) ([]TimeSlot, error)
}

// UnitRepository exposes CRUD operations for academic units.
type UnitRepository interface {
	CreateUnit(ctx context.Context, unit Unit) (Unit, error)
	GetUnit(ctx context.Context, id int64) (Unit, error)
	GetUnitByCode(ctx context.Context, code string) (Unit, error)
	UpdateUnit(ctx context.Context, unit Unit) (Unit, error)
	ListUnits(ctx context.Context, includeInactive bool) ([]Unit, error)
}

// ScheduleRepository stores weekly schedule entries.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id int64) (Schedule, error)
	UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleFilter) ([]Schedule, error)
	CountSchedules(ctx context.Context, filter ScheduleFilter) (int, error)
}

// EnrollmentRepository stores enrollments and their status tallies.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	GetEnrollment(ctx context.Context, id int64) (Enrollment, error)
	UpdateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	ListEnrollments(ctx context.Context, filter EnrollmentFilter) ([]Enrollment, error)
	CountEnrollmentsByStatus(ctx context.Context, scheduleID int64) (timetable.StatusTally, error)
}
