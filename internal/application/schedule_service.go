package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/meetings"
	"github.com/example/course-scheduler/internal/timetable"
)

// ScheduleRepository captures the persistence interactions needed by the service.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id int64) (Schedule, error)
	UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	ListSchedules(ctx context.Context, filter ScheduleRepositoryFilter) ([]Schedule, error)
	CountSchedules(ctx context.Context, filter ScheduleRepositoryFilter) (int, error)
}

// ScheduleRepositoryFilter narrows queries issued to the schedule repository.
type ScheduleRepositoryFilter struct {
	UnitID       *int64
	TimeSlotID   *int64
	DayID        *int64
	Semester     *string
	AcademicYear *int
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// UnitCatalog exposes unit lookup operations.
type UnitCatalog interface {
	GetUnit(ctx context.Context, id int64) (Unit, error)
}

// TimeSlotCatalog exposes time slot lookup operations.
type TimeSlotCatalog interface {
	GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error)
}

// DayCatalog exposes weekday lookup operations.
type DayCatalog interface {
	GetDay(ctx context.Context, id int64) (Day, error)
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ScheduleService orchestrates validation, conflict detection, and persistence
// for weekly schedules, and derives capacity statistics on every read path.
type ScheduleService struct {
	schedules   ScheduleRepository
	units       UnitCatalog
	slots       TimeSlotCatalog
	days        DayCatalog
	bookings    BookingSource
	enrollments EnrollmentTally
	expander    *meetings.Engine
	statsCache  *statsCache
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(schedules ScheduleRepository, units UnitCatalog, slots TimeSlotCatalog, days DayCatalog, bookings BookingSource, enrollments EnrollmentTally, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, units, slots, days, bookings, enrollments, now, nil)
}

// NewScheduleServiceWithLogger constructs a schedule service with a specified logger.
func NewScheduleServiceWithLogger(schedules ScheduleRepository, units UnitCatalog, slots TimeSlotCatalog, days DayCatalog, bookings BookingSource, enrollments EnrollmentTally, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:   schedules,
		units:       units,
		slots:       slots,
		days:        days,
		bookings:    bookings,
		enrollments: enrollments,
		expander:    meetings.NewEngine(nil),
		statsCache:  newStatsCache(0, 0, now),
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ScheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ScheduleService", operation, attrs...)
}

// CreateSchedule validates references, rejects duplicate and occupied weekly
// slots, and persists the schedule.
func (s *ScheduleService) CreateSchedule(ctx context.Context, params CreateScheduleParams) (schedule Schedule, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateSchedule", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedule_id", schedule.ID).InfoContext(ctx, "schedule created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	if err = validateScheduleCore(input); err != nil {
		return
	}

	var unit Unit
	var slot TimeSlot
	var day Day
	if unit, slot, day, err = s.resolveReferences(ctx, input.UnitID, input.TimeSlotID, input.DayID); err != nil {
		return
	}

	key := timetable.SlotKey{
		TimeSlotID:   input.TimeSlotID,
		DayID:        input.DayID,
		Semester:     input.Semester,
		AcademicYear: input.AcademicYear,
	}
	if err = s.ensureNoConflict(ctx, unit.ID, key, 0); err != nil {
		return
	}

	now := s.now()
	schedule = Schedule{
		Unit:         unit,
		TimeSlot:     slot,
		Day:          day,
		Semester:     strings.TrimSpace(input.Semester),
		AcademicYear: input.AcademicYear,
		TutorName:    normalizeOptionalString(input.TutorName),
		Location:     normalizeOptionalString(input.Location),
		MaxCapacity:  input.MaxCapacity,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.schedules == nil {
		return
	}

	schedule, err = s.schedules.CreateSchedule(ctx, schedule)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	s.statsCache.Invalidate()
	return
}

// UpdateSchedule applies a partial update. Time and day are immutable while
// non-terminal enrollments exist, and capacity may not drop below the current
// approved count.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, params UpdateScheduleParams) (schedule Schedule, err error) {
	if s == nil {
		err = fmt.Errorf("ScheduleService is nil")
		return
	}
	if s.schedules == nil {
		err = fmt.Errorf("schedule repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSchedule",
		"principal_id", params.Principal.AccountID,
		"schedule_id", params.ScheduleID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update schedule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "schedule updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing Schedule
	existing, err = s.schedules.GetSchedule(ctx, params.ScheduleID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var tally timetable.StatusTally
	if s.enrollments != nil {
		tally, err = s.enrollments.CountEnrollmentsByStatus(ctx, existing.ID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	input := params.Input

	slotChanged := input.TimeSlotID != nil && *input.TimeSlotID != existing.TimeSlot.ID
	dayChanged := input.DayID != nil && *input.DayID != existing.Day.ID
	if (slotChanged || dayChanged) && tally.NonTerminal() > 0 {
		vErr := &ValidationError{}
		vErr.add("schedule", fmt.Sprintf("time and day cannot change while %d enrollment(s) are pending, approved, or waitlisted", tally.NonTerminal()))
		err = vErr
		return
	}

	if input.MaxCapacity != nil {
		if *input.MaxCapacity <= 0 {
			vErr := &ValidationError{}
			vErr.add("max_capacity", "capacity must be a positive integer")
			err = vErr
			return
		}
		if approved := tally[timetable.StatusApproved]; *input.MaxCapacity < approved {
			vErr := &ValidationError{}
			vErr.add("max_capacity", fmt.Sprintf("capacity cannot be below the current approved enrollment count (%d)", approved))
			err = vErr
			return
		}
	}

	updated := existing
	if slotChanged {
		var slot TimeSlot
		slot, err = s.resolveTimeSlot(ctx, *input.TimeSlotID)
		if err != nil {
			return
		}
		updated.TimeSlot = slot
	}
	if dayChanged {
		var day Day
		day, err = s.resolveDay(ctx, *input.DayID)
		if err != nil {
			return
		}
		updated.Day = day
	}
	if input.Semester != nil {
		if strings.TrimSpace(*input.Semester) == "" {
			vErr := &ValidationError{}
			vErr.add("semester", "semester is required")
			err = vErr
			return
		}
		updated.Semester = strings.TrimSpace(*input.Semester)
	}
	if input.AcademicYear != nil {
		if *input.AcademicYear <= 0 {
			vErr := &ValidationError{}
			vErr.add("academic_year", "academic year must be a positive integer")
			err = vErr
			return
		}
		updated.AcademicYear = *input.AcademicYear
	}
	if input.TutorName != nil {
		updated.TutorName = normalizeOptionalString(input.TutorName)
	}
	if input.Location != nil {
		updated.Location = normalizeOptionalString(input.Location)
	}
	if input.MaxCapacity != nil {
		updated.MaxCapacity = input.MaxCapacity
	}

	keyChanged := updated.TimeSlot.ID != existing.TimeSlot.ID ||
		updated.Day.ID != existing.Day.ID ||
		updated.Semester != existing.Semester ||
		updated.AcademicYear != existing.AcademicYear
	if keyChanged {
		key := timetable.SlotKey{
			TimeSlotID:   updated.TimeSlot.ID,
			DayID:        updated.Day.ID,
			Semester:     updated.Semester,
			AcademicYear: updated.AcademicYear,
		}
		if err = s.ensureNoConflict(ctx, updated.Unit.ID, key, existing.ID); err != nil {
			return
		}
	}

	updated.UpdatedAt = s.now()
	schedule, err = s.schedules.UpdateSchedule(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	s.statsCache.Invalidate()
	return
}

// DeleteSchedule soft-deletes a schedule that carries no non-terminal enrollments.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, principal Principal, scheduleID int64) error {
	if s == nil || s.schedules == nil {
		return fmt.Errorf("schedule repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSchedule", "principal_id", principal.AccountID, "schedule_id", scheduleID)

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	existing, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return mapRepoError(err)
	}

	if s.enrollments != nil {
		tally, err := s.enrollments.CountEnrollmentsByStatus(ctx, existing.ID)
		if err != nil {
			return mapRepoError(err)
		}
		if live := tally.NonTerminal(); live > 0 {
			err := &PreconditionError{Message: fmt.Sprintf("schedule has %d unresolved enrollment(s)", live)}
			logger.ErrorContext(ctx, "schedule delete blocked", "error", err, "error_kind", ErrorKind(err))
			return err
		}
	}

	existing.IsActive = false
	existing.UpdatedAt = s.now()
	if _, err := s.schedules.UpdateSchedule(ctx, existing); err != nil {
		return mapRepoError(err)
	}
	s.statsCache.Invalidate()
	logger.InfoContext(ctx, "schedule deleted")
	return nil
}

// GetSchedule returns a schedule with its derived capacity statistics.
func (s *ScheduleService) GetSchedule(ctx context.Context, id int64) (ScheduleDetail, error) {
	if s == nil || s.schedules == nil {
		return ScheduleDetail{}, fmt.Errorf("schedule repository not configured")
	}
	schedule, err := s.schedules.GetSchedule(ctx, id)
	if err != nil {
		return ScheduleDetail{}, mapRepoError(err)
	}
	return s.withStats(ctx, schedule)
}

// ListSchedules returns one page of schedules matching the filters.
func (s *ScheduleService) ListSchedules(ctx context.Context, params ListSchedulesParams) (SchedulePage, error) {
	if s == nil || s.schedules == nil {
		return SchedulePage{}, fmt.Errorf("schedule repository not configured")
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := ScheduleRepositoryFilter{
		UnitID:       params.UnitID,
		TimeSlotID:   params.TimeSlotID,
		DayID:        params.DayID,
		Semester:     params.Semester,
		AcademicYear: params.AcademicYear,
		ActiveOnly:   !params.IncludeInactive,
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}

	total, err := s.schedules.CountSchedules(ctx, filter)
	if err != nil {
		return SchedulePage{}, mapRepoError(err)
	}

	schedules, err := s.schedules.ListSchedules(ctx, filter)
	if err != nil {
		return SchedulePage{}, mapRepoError(err)
	}

	details, err := s.withStatsAll(ctx, schedules)
	if err != nil {
		return SchedulePage{}, err
	}

	return SchedulePage{Schedules: details, Total: total, Page: page, Limit: limit}, nil
}

// ListSchedulesForUnit returns every active schedule bound to the unit.
func (s *ScheduleService) ListSchedulesForUnit(ctx context.Context, unitID int64) ([]ScheduleDetail, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	if s.units != nil {
		if _, err := s.units.GetUnit(ctx, unitID); err != nil {
			return nil, mapRepoError(err)
		}
	}

	schedules, err := s.schedules.ListSchedules(ctx, ScheduleRepositoryFilter{UnitID: &unitID, ActiveOnly: true})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return s.withStatsAll(ctx, schedules)
}

// AvailableSchedules returns the active schedules that still have seats:
// schedules where the approved count has reached effective capacity are
// filtered out.
func (s *ScheduleService) AvailableSchedules(ctx context.Context, semester *string, academicYear *int) ([]ScheduleDetail, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	schedules, err := s.schedules.ListSchedules(ctx, ScheduleRepositoryFilter{
		Semester:     semester,
		AcademicYear: academicYear,
		ActiveOnly:   true,
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	details, err := s.withStatsAll(ctx, schedules)
	if err != nil {
		return nil, err
	}

	available := make([]ScheduleDetail, 0, len(details))
	for _, detail := range details {
		if detail.Stats.Full {
			continue
		}
		available = append(available, detail)
	}
	if len(available) == 0 {
		return nil, nil
	}
	return available, nil
}

// CheckConflict probes the weekly slot occupancy rule without failing: the
// result carries the conflict flag and the enumerated conflict message.
func (s *ScheduleService) CheckConflict(ctx context.Context, params ConflictCheckParams) (ConflictCheck, error) {
	if s == nil {
		return ConflictCheck{}, fmt.Errorf("ScheduleService is nil")
	}

	vErr := &ValidationError{}
	if params.TimeSlotID <= 0 {
		vErr.add("time_slot_id", "time slot id is required")
	}
	if params.DayID <= 0 {
		vErr.add("day_id", "day id is required")
	}
	if strings.TrimSpace(params.Semester) == "" {
		vErr.add("semester", "semester is required")
	}
	if params.AcademicYear <= 0 {
		vErr.add("academic_year", "academic year must be a positive integer")
	}
	if vErr.HasErrors() {
		return ConflictCheck{}, vErr
	}

	key := timetable.SlotKey{
		TimeSlotID:   params.TimeSlotID,
		DayID:        params.DayID,
		Semester:     strings.TrimSpace(params.Semester),
		AcademicYear: params.AcademicYear,
	}
	err := s.occupancyError(ctx, key, params.ExcludeID)
	if err == nil {
		return ConflictCheck{HasConflict: false}, nil
	}
	if cErr, ok := err.(*ConflictError); ok {
		return ConflictCheck{HasConflict: true, Message: cErr.Message}, nil
	}
	return ConflictCheck{}, err
}

// OverviewStats aggregates capacity statistics across the schedule catalog.
func (s *ScheduleService) OverviewStats(ctx context.Context, principal Principal) (ScheduleOverviewStats, error) {
	if s == nil || s.schedules == nil {
		return ScheduleOverviewStats{}, fmt.Errorf("schedule repository not configured")
	}
	if !principal.IsAdmin {
		return ScheduleOverviewStats{}, ErrUnauthorized
	}

	if cached, ok := s.statsCache.Get(overviewStatsCacheKey); ok {
		return cached, nil
	}

	all, err := s.schedules.ListSchedules(ctx, ScheduleRepositoryFilter{})
	if err != nil {
		return ScheduleOverviewStats{}, mapRepoError(err)
	}

	stats := ScheduleOverviewStats{TotalSchedules: len(all)}
	for _, schedule := range all {
		if !schedule.IsActive {
			continue
		}
		stats.ActiveSchedules++

		detail, err := s.withStats(ctx, schedule)
		if err != nil {
			return ScheduleOverviewStats{}, err
		}

		stats.TotalCapacity += detail.Stats.Capacity
		stats.TotalApproved += detail.Stats.Approved
		if detail.Stats.Full {
			stats.FullSchedules++
		}
		if detail.Stats.Approved+detail.Stats.Pending+detail.Stats.Waitlisted+detail.Stats.Rejected+detail.Stats.Withdrawn == 0 {
			stats.EmptySchedules++
		}
	}
	stats.AvailableSpots = stats.TotalCapacity - stats.TotalApproved
	stats.UtilizationPct = timetable.UtilizationPercent(stats.TotalApproved, stats.TotalCapacity)

	s.statsCache.Store(overviewStatsCacheKey, stats)
	return stats, nil
}

// MeetingDates expands a schedule's weekly slot into concrete class meetings
// within the requested window.
func (s *ScheduleService) MeetingDates(ctx context.Context, scheduleID int64, from, until time.Time) ([]meetings.Meeting, error) {
	if s == nil || s.schedules == nil {
		return nil, fmt.Errorf("schedule repository not configured")
	}

	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if until.IsZero() || !until.After(from) {
		vErr := &ValidationError{}
		vErr.add("range", "a window with until after from is required")
		return nil, vErr
	}

	expander := s.expander
	if expander == nil {
		expander = meetings.NewEngine(nil)
	}

	occurrences, err := expander.Expand(meetings.WeeklySlot{
		ScheduleID: schedule.ID,
		Weekday:    weekdayForPosition(schedule.Day.Position),
		StartTime:  schedule.TimeSlot.StartTime,
		EndTime:    schedule.TimeSlot.EndTime,
	}, from, until)
	if err != nil {
		return nil, err
	}
	return occurrences, nil
}

func (s *ScheduleService) resolveReferences(ctx context.Context, unitID, timeSlotID, dayID int64) (Unit, TimeSlot, Day, error) {
	unit, err := s.resolveUnit(ctx, unitID)
	if err != nil {
		return Unit{}, TimeSlot{}, Day{}, err
	}
	slot, err := s.resolveTimeSlot(ctx, timeSlotID)
	if err != nil {
		return Unit{}, TimeSlot{}, Day{}, err
	}
	day, err := s.resolveDay(ctx, dayID)
	if err != nil {
		return Unit{}, TimeSlot{}, Day{}, err
	}
	return unit, slot, day, nil
}

func (s *ScheduleService) resolveUnit(ctx context.Context, id int64) (Unit, error) {
	if s.units == nil {
		return Unit{ID: id}, nil
	}
	unit, err := s.units.GetUnit(ctx, id)
	if err != nil {
		return Unit{}, mapRepoError(err)
	}
	if !unit.IsActive {
		return Unit{}, ErrNotFound
	}
	return unit, nil
}

func (s *ScheduleService) resolveTimeSlot(ctx context.Context, id int64) (TimeSlot, error) {
	if s.slots == nil {
		return TimeSlot{ID: id}, nil
	}
	slot, err := s.slots.GetTimeSlot(ctx, id)
	if err != nil {
		return TimeSlot{}, mapRepoError(err)
	}
	if !slot.IsActive {
		return TimeSlot{}, ErrNotFound
	}
	return slot, nil
}

func (s *ScheduleService) resolveDay(ctx context.Context, id int64) (Day, error) {
	if s.days == nil {
		return Day{ID: id}, nil
	}
	day, err := s.days.GetDay(ctx, id)
	if err != nil {
		return Day{}, mapRepoError(err)
	}
	return day, nil
}

// ensureNoConflict runs the duplicate-tuple check first, then the unit-agnostic
// occupancy check. The duplicate check reports the more specific message, so
// the ordering is load-bearing.
func (s *ScheduleService) ensureNoConflict(ctx context.Context, unitID int64, key timetable.SlotKey, excludeID int64) error {
	if s.bookings == nil {
		return nil
	}
	bookings, err := s.bookings.ActiveBookings(ctx)
	if err != nil {
		return mapRepoError(err)
	}

	if duplicates := timetable.DuplicateOf(bookings, unitID, key, excludeID); len(duplicates) > 0 {
		return &ConflictError{Message: "Schedule already exists for this combination"}
	}

	return occupancyErrorFromBookings(bookings, key, excludeID)
}

func (s *ScheduleService) occupancyError(ctx context.Context, key timetable.SlotKey, excludeID int64) error {
	if s.bookings == nil {
		return nil
	}
	bookings, err := s.bookings.ActiveBookings(ctx)
	if err != nil {
		return mapRepoError(err)
	}
	return occupancyErrorFromBookings(bookings, key, excludeID)
}

func occupancyErrorFromBookings(bookings []timetable.Booking, key timetable.SlotKey, excludeID int64) error {
	occupants := timetable.Occupants(bookings, key, excludeID)
	if len(occupants) == 0 {
		return nil
	}
	labels := make([]string, 0, len(occupants))
	for _, occupant := range occupants {
		labels = append(labels, occupant.Label)
	}
	return &ConflictError{Message: fmt.Sprintf("schedule conflicts with: %s", strings.Join(labels, ", "))}
}

func (s *ScheduleService) withStats(ctx context.Context, schedule Schedule) (ScheduleDetail, error) {
	var tally timetable.StatusTally
	if s.enrollments != nil {
		var err error
		tally, err = s.enrollments.CountEnrollmentsByStatus(ctx, schedule.ID)
		if err != nil {
			return ScheduleDetail{}, mapRepoError(err)
		}
	}
	return ScheduleDetail{
		Schedule: schedule,
		Stats:    timetable.ComputeCapacityStats(schedule.EffectiveCapacity(), tally),
	}, nil
}

func (s *ScheduleService) withStatsAll(ctx context.Context, schedules []Schedule) ([]ScheduleDetail, error) {
	if len(schedules) == 0 {
		return nil, nil
	}

	ordered := make([]Schedule, len(schedules))
	copy(ordered, schedules)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Day.Position != ordered[j].Day.Position {
			return ordered[i].Day.Position < ordered[j].Day.Position
		}
		if !ordered[i].TimeSlot.StartTime.Equal(ordered[j].TimeSlot.StartTime) {
			return ordered[i].TimeSlot.StartTime.Before(ordered[j].TimeSlot.StartTime)
		}
		return ordered[i].ID < ordered[j].ID
	})

	details := make([]ScheduleDetail, 0, len(ordered))
	for _, schedule := range ordered {
		detail, err := s.withStats(ctx, schedule)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func validateScheduleCore(input ScheduleInput) error {
	vErr := &ValidationError{}
	if input.UnitID <= 0 {
		vErr.add("unit_id", "unit id is required")
	}
	if input.TimeSlotID <= 0 {
		vErr.add("time_slot_id", "time slot id is required")
	}
	if input.DayID <= 0 {
		vErr.add("day_id", "day id is required")
	}
	if strings.TrimSpace(input.Semester) == "" {
		vErr.add("semester", "semester is required")
	}
	if input.AcademicYear <= 0 {
		vErr.add("academic_year", "academic year must be a positive integer")
	}
	if input.MaxCapacity != nil && *input.MaxCapacity <= 0 {
		vErr.add("max_capacity", "capacity must be a positive integer")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// weekdayForPosition maps the seeded day ordering (Monday=1 .. Sunday=7) onto
// time.Weekday (Sunday=0).
func weekdayForPosition(position int) time.Weekday {
	return time.Weekday(position % 7)
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
