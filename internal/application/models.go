package application

import (
	"time"

	"github.com/example/course-scheduler/internal/timetable"
)

// Principal represents the authenticated account invoking a service method.
type Principal struct {
	AccountID string
	IsAdmin   bool
}

// Account represents a platform account exposed by the application services.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountInput captures caller provided account attributes.
type AccountInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// AccountCredentials models the authentication attributes persisted for an account.
type AccountCredentials struct {
	Account      Account
	PasswordHash string
}

// Session represents an authenticated session issued to an account.
type Session struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate an account.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	Account Account
	Session Session
}

// RefreshSessionParams captures the data required to refresh an existing session.
type RefreshSessionParams struct {
	Token string
}

// RefreshSessionResult captures the outcome of rotating a session token.
type RefreshSessionResult struct {
	Session Session
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

// TimeSlotInput captures caller provided time slot fields for creation.
type TimeSlotInput struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
}

// TimeSlotUpdateInput captures the partial update payload for a time slot.
// Nil fields keep their current value.
type TimeSlotUpdateInput struct {
	Name      *string
	StartTime *time.Time
	EndTime   *time.Time
}

// CreateTimeSlotParams wraps the data required to create a time slot.
type CreateTimeSlotParams struct {
	Principal Principal
	Input     TimeSlotInput
}

// UpdateTimeSlotParams wraps the data required to update a time slot.
type UpdateTimeSlotParams struct {
	Principal  Principal
	TimeSlotID int64
	Input      TimeSlotUpdateInput
}

// SlotUsage reports the number of active schedules bound to one time slot.
type SlotUsage struct {
	TimeSlotID      int64
	Name            string
	ActiveSchedules int
}

// TimeSlotUsageStats aggregates slot usage across the catalog.
type TimeSlotUsageStats struct {
	Total          int
	Used           int
	Unused         int
	UtilizationPct int
	Slots          []SlotUsage
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

// UnitInput captures caller provided unit fields.
type UnitInput struct {
	Code        string
	Title       string
	Description *string
	Credits     int
	Capacity    int
}

// CreateUnitParams wraps the data required to create a unit.
type CreateUnitParams struct {
	Principal Principal
	Input     UnitInput
}

// UpdateUnitParams wraps the data required to update a unit.
type UpdateUnitParams struct {
	Principal Principal
	UnitID    int64
	Input     UnitInput
}

// Schedule represents a weekly schedule with its joined references resolved.
type Schedule struct {
	ID           int64
	Unit         Unit
	TimeSlot     TimeSlot
	Day          Day
	Semester     string
	AcademicYear int
	TutorName    *string
	Location     *string
	MaxCapacity  *int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EffectiveCapacity resolves the capacity binding this schedule.
func (s Schedule) EffectiveCapacity() int {
	return timetable.EffectiveCapacity(s.MaxCapacity, s.Unit.Capacity)
}

// ScheduleDetail pairs a schedule with its derived capacity statistics.
type ScheduleDetail struct {
	Schedule Schedule
	Stats    timetable.CapacityStats
}

// ScheduleInput captures caller provided schedule fields for creation.
type ScheduleInput struct {
	UnitID       int64
	TimeSlotID   int64
	DayID        int64
	Semester     string
	AcademicYear int
	TutorName    *string
	Location     *string
	MaxCapacity  *int
}

// ScheduleUpdateInput captures the partial update payload for a schedule.
// Nil fields keep their current value.
type ScheduleUpdateInput struct {
	TimeSlotID   *int64
	DayID        *int64
	Semester     *string
	AcademicYear *int
	TutorName    *string
	Location     *string
	MaxCapacity  *int
}

// CreateScheduleParams wraps the data required to create a schedule.
type CreateScheduleParams struct {
	Principal Principal
	Input     ScheduleInput
}

// UpdateScheduleParams wraps the data required to update a schedule.
type UpdateScheduleParams struct {
	Principal  Principal
	ScheduleID int64
	Input      ScheduleUpdateInput
}

// ListSchedulesParams wraps filters and pagination for schedule listings.
type ListSchedulesParams struct {
	Principal       Principal
	UnitID          *int64
	TimeSlotID      *int64
	DayID           *int64
	Semester        *string
	AcademicYear    *int
	IncludeInactive bool
	Page            int
	Limit           int
}

// SchedulePage is one page of schedule details plus the unpaged total.
type SchedulePage struct {
	Schedules []ScheduleDetail
	Total     int
	Page      int
	Limit     int
}

// ConflictCheck is the non-throwing result of the conflict probe.
type ConflictCheck struct {
	HasConflict bool
	Message     string
}

// ConflictCheckParams identifies the weekly slot to probe.
type ConflictCheckParams struct {
	TimeSlotID   int64
	DayID        int64
	Semester     string
	AcademicYear int
	ExcludeID    int64
}

// ScheduleOverviewStats aggregates capacity statistics across schedules.
type ScheduleOverviewStats struct {
	TotalSchedules  int
	ActiveSchedules int
	TotalCapacity   int
	TotalApproved   int
	AvailableSpots  int
	FullSchedules   int
	EmptySchedules  int
	UtilizationPct  int
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

// EnrollParams wraps the data required to enroll a student.
type EnrollParams struct {
	Principal  Principal
	ScheduleID int64
	// StudentID defaults to the principal; administrators may enroll others.
	StudentID string
}

// UpdateEnrollmentStatusParams wraps an administrator's status decision.
type UpdateEnrollmentStatusParams struct {
	Principal    Principal
	EnrollmentID int64
	Status       timetable.EnrollmentStatus
}
