package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/course-scheduler/internal/application"
	"github.com/example/course-scheduler/internal/persistence"
	"github.com/example/course-scheduler/internal/timetable"
)

var (
	accountCounter    uint64
	timeSlotCounter   uint64
	unitCounter       uint64
	scheduleCounter   uint64
	enrollmentCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SlotTime returns a clock-of-day value on the shared anchor date used for
// time slot intervals.
func SlotTime(hour, minute int) time.Time {
	return time.Date(2000, time.January, 1, hour, minute, 0, 0, time.UTC)
}

// ---------------------------- Account fixtures ----------------------------

// AccountFixture represents a deterministic account record that can be
// materialised for application or persistence tests.
type AccountFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountOption configures the generated account fixture.
type AccountOption func(*AccountFixture)

// NewAccountFixture returns a deterministic account fixture with optional overrides.
func NewAccountFixture(opts ...AccountOption) AccountFixture {
	idx := atomic.AddUint64(&accountCounter, 1)
	id := fmt.Sprintf("account-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := AccountFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Account %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAccountID overrides the generated account ID.
func WithAccountID(id string) AccountOption {
	return func(f *AccountFixture) {
		f.ID = id
	}
}

// WithAccountEmail overrides the generated email address.
func WithAccountEmail(email string) AccountOption {
	return func(f *AccountFixture) {
		f.Email = email
	}
}

// WithAccountPasswordHash overrides the generated password hash.
func WithAccountPasswordHash(hash string) AccountOption {
	return func(f *AccountFixture) {
		f.PasswordHash = hash
	}
}

// WithAccountAdmin sets the admin flag on the generated fixture.
func WithAccountAdmin(isAdmin bool) AccountOption {
	return func(f *AccountFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithAccountDisabled marks the generated fixture as disabled.
func WithAccountDisabled(disabled bool) AccountOption {
	return func(f *AccountFixture) {
		f.Disabled = disabled
	}
}

// Application returns the fixture as an application.Account value.
func (f AccountFixture) Application() application.Account {
	return application.Account{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		IsAdmin:     f.IsAdmin,
		Disabled:    f.Disabled,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.AccountCredentials.
func (f AccountFixture) Credentials() application.AccountCredentials {
	return application.AccountCredentials{
		Account:      f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f AccountFixture) Principal() application.Principal {
	return application.Principal{AccountID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.Account value.
func (f AccountFixture) Persistence() persistence.Account {
	return persistence.Account{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// --------------------------- Time slot fixtures ---------------------------

// TimeSlotFixture represents a deterministic time slot record.
type TimeSlotFixture struct {
	ID        int64
	Name      string
	StartTime time.Time
	EndTime   time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimeSlotOption configures the generated time slot fixture.
type TimeSlotOption func(*TimeSlotFixture)

// NewTimeSlotFixture returns a deterministic time slot fixture. Successive
// fixtures occupy consecutive hours so they never overlap by default.
func NewTimeSlotFixture(opts ...TimeSlotOption) TimeSlotFixture {
	idx := atomic.AddUint64(&timeSlotCounter, 1)
	startHour := int(idx % 23)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := TimeSlotFixture{
		ID:        int64(idx),
		Name:      fmt.Sprintf("Slot %03d", idx),
		StartTime: SlotTime(startHour, 0),
		EndTime:   SlotTime(startHour+1, 0),
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTimeSlotID overrides the generated time slot ID.
func WithTimeSlotID(id int64) TimeSlotOption {
	return func(f *TimeSlotFixture) {
		f.ID = id
	}
}

// WithTimeSlotName overrides the generated name.
func WithTimeSlotName(name string) TimeSlotOption {
	return func(f *TimeSlotFixture) {
		f.Name = name
	}
}

// WithTimeSlotInterval sets the start and end of the generated slot.
func WithTimeSlotInterval(start, end time.Time) TimeSlotOption {
	return func(f *TimeSlotFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithTimeSlotActive sets the active flag on the generated fixture.
func WithTimeSlotActive(active bool) TimeSlotOption {
	return func(f *TimeSlotFixture) {
		f.IsActive = active
	}
}

// Application returns the fixture as an application.TimeSlot value.
func (f TimeSlotFixture) Application() application.TimeSlot {
	return application.TimeSlot{
		ID:        f.ID,
		Name:      f.Name,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.TimeSlot value.
func (f TimeSlotFixture) Persistence() persistence.TimeSlot {
	return persistence.TimeSlot{
		ID:        f.ID,
		Name:      f.Name,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		IsActive:  f.IsActive,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Unit fixtures ------------------------------

// UnitFixture represents a deterministic academic unit record.
type UnitFixture struct {
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

// UnitOption configures the generated unit fixture.
type UnitOption func(*UnitFixture)

// NewUnitFixture returns a deterministic unit fixture with optional overrides.
func NewUnitFixture(opts ...UnitOption) UnitFixture {
	idx := atomic.AddUint64(&unitCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UnitFixture{
		ID:        int64(idx),
		Code:      fmt.Sprintf("CS%03d", 100+idx),
		Title:     fmt.Sprintf("Unit %03d", idx),
		Credits:   6,
		Capacity:  30,
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUnitID overrides the generated unit ID.
func WithUnitID(id int64) UnitOption {
	return func(f *UnitFixture) {
		f.ID = id
	}
}

// WithUnitCode overrides the generated unit code.
func WithUnitCode(code string) UnitOption {
	return func(f *UnitFixture) {
		f.Code = code
	}
}

// WithUnitCapacity sets the default enrollment capacity.
func WithUnitCapacity(capacity int) UnitOption {
	return func(f *UnitFixture) {
		f.Capacity = capacity
	}
}

// WithUnitCredits sets the credit value of the generated unit.
func WithUnitCredits(credits int) UnitOption {
	return func(f *UnitFixture) {
		f.Credits = credits
	}
}

// WithUnitActive sets the active flag on the generated fixture.
func WithUnitActive(active bool) UnitOption {
	return func(f *UnitFixture) {
		f.IsActive = active
	}
}

// Application returns the fixture as an application.Unit value.
func (f UnitFixture) Application() application.Unit {
	return application.Unit{
		ID:          f.ID,
		Code:        f.Code,
		Title:       f.Title,
		Description: f.Description,
		Credits:     f.Credits,
		Capacity:    f.Capacity,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Unit value.
func (f UnitFixture) Persistence() persistence.Unit {
	return persistence.Unit{
		ID:          f.ID,
		Code:        f.Code,
		Title:       f.Title,
		Description: f.Description,
		Credits:     f.Credits,
		Capacity:    f.Capacity,
		IsActive:    f.IsActive,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// --------------------------- Schedule fixtures ----------------------------

// ScheduleFixture represents a deterministic weekly schedule record.
type ScheduleFixture struct {
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

// ScheduleOption configures the generated schedule fixture.
type ScheduleOption func(*ScheduleFixture)

// NewScheduleFixture returns a deterministic schedule fixture. Successive
// fixtures rotate through the seeded weekdays so they claim distinct slots.
func NewScheduleFixture(opts ...ScheduleOption) ScheduleFixture {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ScheduleFixture{
		ID:           int64(idx),
		UnitID:       1,
		TimeSlotID:   1,
		DayID:        int64(idx%7) + 1,
		Semester:     "S1",
		AcademicYear: 2024,
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithScheduleID overrides the generated schedule ID.
func WithScheduleID(id int64) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.ID = id
	}
}

// WithScheduleUnit binds the schedule to the given unit.
func WithScheduleUnit(unitID int64) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.UnitID = unitID
	}
}

// WithScheduleSlot binds the schedule to the given weekly slot.
func WithScheduleSlot(timeSlotID, dayID int64) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.TimeSlotID = timeSlotID
		f.DayID = dayID
	}
}

// WithScheduleTerm sets the semester and academic year.
func WithScheduleTerm(semester string, academicYear int) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.Semester = semester
		f.AcademicYear = academicYear
	}
}

// WithScheduleMaxCapacity sets the schedule level capacity override.
func WithScheduleMaxCapacity(capacity int) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.MaxCapacity = &capacity
	}
}

// WithScheduleActive sets the active flag on the generated fixture.
func WithScheduleActive(active bool) ScheduleOption {
	return func(f *ScheduleFixture) {
		f.IsActive = active
	}
}

// Persistence returns the fixture as a persistence.Schedule value.
func (f ScheduleFixture) Persistence() persistence.Schedule {
	return persistence.Schedule{
		ID:           f.ID,
		UnitID:       f.UnitID,
		TimeSlotID:   f.TimeSlotID,
		DayID:        f.DayID,
		Semester:     f.Semester,
		AcademicYear: f.AcademicYear,
		TutorName:    f.TutorName,
		Location:     f.Location,
		MaxCapacity:  f.MaxCapacity,
		IsActive:     f.IsActive,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Booking returns the fixture as a timetable.Booking with the given label.
func (f ScheduleFixture) Booking(label string) timetable.Booking {
	return timetable.Booking{
		ScheduleID: f.ID,
		UnitID:     f.UnitID,
		Key: timetable.SlotKey{
			TimeSlotID:   f.TimeSlotID,
			DayID:        f.DayID,
			Semester:     f.Semester,
			AcademicYear: f.AcademicYear,
		},
		Active: f.IsActive,
		Label:  label,
	}
}

// -------------------------- Enrollment fixtures ---------------------------

// EnrollmentFixture represents a deterministic enrollment record.
type EnrollmentFixture struct {
	ID         int64
	ScheduleID int64
	StudentID  string
	Status     timetable.EnrollmentStatus
	EnrolledAt time.Time
	UpdatedAt  time.Time
}

// EnrollmentOption configures the generated enrollment fixture.
type EnrollmentOption func(*EnrollmentFixture)

// NewEnrollmentFixture returns a deterministic enrollment fixture.
func NewEnrollmentFixture(opts ...EnrollmentOption) EnrollmentFixture {
	idx := atomic.AddUint64(&enrollmentCounter, 1)
	enrolled := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EnrollmentFixture{
		ID:         int64(idx),
		ScheduleID: 1,
		StudentID:  fmt.Sprintf("student-%03d", idx),
		Status:     timetable.StatusPending,
		EnrolledAt: enrolled,
		UpdatedAt:  enrolled,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEnrollmentSchedule binds the enrollment to the given schedule.
func WithEnrollmentSchedule(scheduleID int64) EnrollmentOption {
	return func(f *EnrollmentFixture) {
		f.ScheduleID = scheduleID
	}
}

// WithEnrollmentStudent sets the enrolled student identifier.
func WithEnrollmentStudent(studentID string) EnrollmentOption {
	return func(f *EnrollmentFixture) {
		f.StudentID = studentID
	}
}

// WithEnrollmentStatus sets the enrollment status.
func WithEnrollmentStatus(status timetable.EnrollmentStatus) EnrollmentOption {
	return func(f *EnrollmentFixture) {
		f.Status = status
	}
}

// Application returns the fixture as an application.Enrollment value.
func (f EnrollmentFixture) Application() application.Enrollment {
	return application.Enrollment{
		ID:         f.ID,
		ScheduleID: f.ScheduleID,
		StudentID:  f.StudentID,
		Status:     f.Status,
		EnrolledAt: f.EnrolledAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Enrollment value.
func (f EnrollmentFixture) Persistence() persistence.Enrollment {
	return persistence.Enrollment{
		ID:         f.ID,
		ScheduleID: f.ScheduleID,
		StudentID:  f.StudentID,
		Status:     f.Status,
		EnrolledAt: f.EnrolledAt,
		UpdatedAt:  f.UpdatedAt,
	}
}
