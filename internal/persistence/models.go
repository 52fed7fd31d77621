package persistence

import (
	"time"

	"github.com/example/course-scheduler/internal/timetable"
)

// Account represents a platform account (student or administrator).
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for an account.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// Day represents seeded weekday reference data.
type Day struct {
	ID       int64
	Name     string
	Position int
}

// TimeSlot represents a named half-open teaching interval.
type TimeSlot struct {
	ID        int64
	Name      string
	StartTime time.Time
	EndTime   time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unit represents an academic unit in the catalog.
type Unit struct {
	ID          int64
	Code        string
	Title       string
	Description *string
	Credits     int
	Capacity    int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Schedule binds a unit to a weekly slot for a semester.
type Schedule struct {
	ID           int64
	UnitID       int64
	TimeSlotID   int64
	DayID        int64
	Semester     string
	AcademicYear int
	TutorName    *string
	Location     *string
	MaxCapacity  *int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Enrollment represents a student's enrollment against a schedule.
type Enrollment struct {
	ID         int64
	ScheduleID int64
	StudentID  string
	Status     timetable.EnrollmentStatus
	EnrolledAt time.Time
	UpdatedAt  time.Time
}

// ScheduleFilter narrows schedule queries.
type ScheduleFilter struct {
	UnitID       *int64
	TimeSlotID   *int64
	DayID        *int64
	Semester     *string
	AcademicYear *int
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// EnrollmentFilter narrows enrollment queries.
type EnrollmentFilter struct {
	ScheduleID *int64
	StudentID  *string
	Statuses   []timetable.EnrollmentStatus
}
