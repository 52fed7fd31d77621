package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/course-scheduler/internal/persistence"
	"github.com/example/course-scheduler/internal/timetable"
)

// TimeSlotRepository captures the persistence interactions needed by the service.
type TimeSlotRepository interface {
	CreateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error)
	GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id int64) error
	ListTimeSlots(ctx context.Context, includeInactive bool) ([]TimeSlot, error)
}

// BookingSource exposes the active schedules as weekly slot bookings.
type BookingSource interface {
	ActiveBookings(ctx context.Context) ([]timetable.Booking, error)
}

// EnrollmentTally exposes per-schedule enrollment status counts.
type EnrollmentTally interface {
	CountEnrollmentsByStatus(ctx context.Context, scheduleID int64) (timetable.StatusTally, error)
}

// TimeSlotService orchestrates validation and persistence for time slot operations.
type TimeSlotService struct {
	slots       TimeSlotRepository
	bookings    BookingSource
	enrollments EnrollmentTally
	now         func() time.Time
	logger      *slog.Logger
}

// NewTimeSlotService wires dependencies for time slot operations.
func NewTimeSlotService(slots TimeSlotRepository, bookings BookingSource, enrollments EnrollmentTally, now func() time.Time) *TimeSlotService {
	return NewTimeSlotServiceWithLogger(slots, bookings, enrollments, now, nil)
}

// NewTimeSlotServiceWithLogger constructs a time slot service with a specified logger.
func NewTimeSlotServiceWithLogger(slots TimeSlotRepository, bookings BookingSource, enrollments EnrollmentTally, now func() time.Time, logger *slog.Logger) *TimeSlotService {
	if now == nil {
		now = time.Now
	}
	return &TimeSlotService{
		slots:       slots,
		bookings:    bookings,
		enrollments: enrollments,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TimeSlotService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TimeSlotService", operation, attrs...)
}

// ListTimeSlots returns the slot catalog ordered by start time ascending.
func (s *TimeSlotService) ListTimeSlots(ctx context.Context, principal Principal, includeInactive bool) ([]TimeSlot, error) {
	if s == nil || s.slots == nil {
		return nil, nil
	}

	slots, err := s.slots.ListTimeSlots(ctx, includeInactive)
	if err != nil {
		return nil, mapRepoError(err)
	}

	ordered := make([]TimeSlot, len(slots))
	copy(ordered, slots)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].StartTime.Equal(ordered[j].StartTime) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].StartTime.Before(ordered[j].StartTime)
	})

	return ordered, nil
}

// GetTimeSlot returns a single slot by identifier.
func (s *TimeSlotService) GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error) {
	if s == nil || s.slots == nil {
		return TimeSlot{}, fmt.Errorf("time slot repository not configured")
	}
	slot, err := s.slots.GetTimeSlot(ctx, id)
	if err != nil {
		return TimeSlot{}, mapRepoError(err)
	}
	return slot, nil
}

// CreateTimeSlot validates the interval against every active slot before persisting.
func (s *TimeSlotService) CreateTimeSlot(ctx context.Context, params CreateTimeSlotParams) (slot TimeSlot, err error) {
	if s == nil {
		err = fmt.Errorf("TimeSlotService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTimeSlot", "principal_id", params.Principal.AccountID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create time slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("time_slot_id", slot.ID).InfoContext(ctx, "time slot created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := params.Input
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.StartTime.IsZero() {
		vErr.add("start_time", "start time is required")
	}
	if input.EndTime.IsZero() {
		vErr.add("end_time", "end time is required")
	}
	if !input.StartTime.IsZero() && !input.EndTime.IsZero() && !input.StartTime.Before(input.EndTime) {
		vErr.add("time", "start time must be before end time")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.ensureNoOverlap(ctx, input.StartTime, input.EndTime, 0); err != nil {
		return
	}

	now := s.now()
	slot = TimeSlot{
		Name:      strings.TrimSpace(input.Name),
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if s.slots == nil {
		return
	}

	slot, err = s.slots.CreateTimeSlot(ctx, slot)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// UpdateTimeSlot applies a partial update, re-running the overlap check when
// either bound changes. Unchanged bounds default to their current value.
func (s *TimeSlotService) UpdateTimeSlot(ctx context.Context, params UpdateTimeSlotParams) (slot TimeSlot, err error) {
	if s == nil {
		err = fmt.Errorf("TimeSlotService is nil")
		return
	}
	if s.slots == nil {
		err = fmt.Errorf("time slot repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTimeSlot",
		"principal_id", params.Principal.AccountID,
		"time_slot_id", params.TimeSlotID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update time slot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "time slot updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing TimeSlot
	existing, err = s.slots.GetTimeSlot(ctx, params.TimeSlotID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	input := params.Input
	updated := existing
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			vErr := &ValidationError{}
			vErr.add("name", "name is required")
			err = vErr
			return
		}
		updated.Name = strings.TrimSpace(*input.Name)
	}

	boundsChanged := false
	if input.StartTime != nil {
		updated.StartTime = *input.StartTime
		boundsChanged = true
	}
	if input.EndTime != nil {
		updated.EndTime = *input.EndTime
		boundsChanged = true
	}

	if boundsChanged {
		if !updated.StartTime.Before(updated.EndTime) {
			vErr := &ValidationError{}
			vErr.add("time", "start time must be before end time")
			err = vErr
			return
		}
		if err = s.ensureNoOverlap(ctx, updated.StartTime, updated.EndTime, existing.ID); err != nil {
			return
		}
	}

	updated.UpdatedAt = s.now()
	slot, err = s.slots.UpdateTimeSlot(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// DeleteTimeSlot permanently removes a slot that no active schedule references.
func (s *TimeSlotService) DeleteTimeSlot(ctx context.Context, principal Principal, id int64) error {
	if s == nil || s.slots == nil {
		return fmt.Errorf("time slot repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteTimeSlot", "principal_id", principal.AccountID, "time_slot_id", id)

	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	if _, err := s.slots.GetTimeSlot(ctx, id); err != nil {
		return mapRepoError(err)
	}

	referencing, err := s.bookingsForSlot(ctx, id)
	if err != nil {
		return err
	}
	if len(referencing) > 0 {
		err := &PreconditionError{Message: fmt.Sprintf("time slot is referenced by %d active schedule(s)", len(referencing))}
		logger.ErrorContext(ctx, "time slot delete blocked", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if err := s.slots.DeleteTimeSlot(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			pErr := &PreconditionError{Message: "time slot is still referenced by existing schedules"}
			logger.ErrorContext(ctx, "time slot delete blocked", "error", pErr, "error_kind", ErrorKind(pErr))
			return pErr
		}
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "time slot deleted")
	return nil
}

// DeactivateTimeSlot soft-deletes a slot. Referencing schedules survive, but
// the slot is blocked while any of them carries a non-terminal enrollment.
func (s *TimeSlotService) DeactivateTimeSlot(ctx context.Context, principal Principal, id int64) (TimeSlot, error) {
	if s == nil || s.slots == nil {
		return TimeSlot{}, fmt.Errorf("time slot repository not configured")
	}

	logger := s.loggerWith(ctx, "DeactivateTimeSlot", "principal_id", principal.AccountID, "time_slot_id", id)

	if !principal.IsAdmin {
		return TimeSlot{}, ErrUnauthorized
	}

	existing, err := s.slots.GetTimeSlot(ctx, id)
	if err != nil {
		return TimeSlot{}, mapRepoError(err)
	}

	referencing, err := s.bookingsForSlot(ctx, id)
	if err != nil {
		return TimeSlot{}, err
	}
	if s.enrollments != nil {
		for _, booking := range referencing {
			tally, err := s.enrollments.CountEnrollmentsByStatus(ctx, booking.ScheduleID)
			if err != nil {
				return TimeSlot{}, mapRepoError(err)
			}
			if tally.NonTerminal() > 0 {
				err := &PreconditionError{Message: "time slot has schedules with unresolved enrollments"}
				logger.ErrorContext(ctx, "time slot deactivate blocked", "error", err, "error_kind", ErrorKind(err))
				return TimeSlot{}, err
			}
		}
	}

	existing.IsActive = false
	existing.UpdatedAt = s.now()
	updated, err := s.slots.UpdateTimeSlot(ctx, existing)
	if err != nil {
		return TimeSlot{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "time slot deactivated")
	return updated, nil
}

// CheckOverlap reports every active slot overlapping the candidate interval.
func (s *TimeSlotService) CheckOverlap(ctx context.Context, start, end time.Time, excludeID int64) ([]TimeSlot, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("time slot repository not configured")
	}
	if start.IsZero() || end.IsZero() {
		vErr := &ValidationError{}
		vErr.add("time", "start time and end time are required")
		return nil, vErr
	}

	slots, err := s.slots.ListTimeSlots(ctx, false)
	if err != nil {
		return nil, mapRepoError(err)
	}

	conflicts, err := timetable.Overlapping(start, end, toIntervals(slots), excludeID)
	if err != nil {
		if errors.Is(err, timetable.ErrInvalidInterval) {
			vErr := &ValidationError{}
			vErr.add("time", "start time must be before end time")
			return nil, vErr
		}
		return nil, err
	}

	matched := make([]TimeSlot, 0, len(conflicts))
	for _, conflict := range conflicts {
		for _, slot := range slots {
			if slot.ID == conflict.ID {
				matched = append(matched, slot)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	return matched, nil
}

// AvailableTimeSlots returns the active slots not occupied by any active
// schedule for the given day, semester, and academic year.
func (s *TimeSlotService) AvailableTimeSlots(ctx context.Context, dayID int64, semester string, academicYear int) ([]TimeSlot, error) {
	if s == nil || s.slots == nil {
		return nil, fmt.Errorf("time slot repository not configured")
	}

	slots, err := s.slots.ListTimeSlots(ctx, false)
	if err != nil {
		return nil, mapRepoError(err)
	}

	occupied := make(map[int64]struct{})
	if s.bookings != nil {
		bookings, err := s.bookings.ActiveBookings(ctx)
		if err != nil {
			return nil, mapRepoError(err)
		}
		for _, booking := range bookings {
			key := booking.Key
			if key.DayID == dayID && key.Semester == semester && key.AcademicYear == academicYear {
				occupied[key.TimeSlotID] = struct{}{}
			}
		}
	}

	available := make([]TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if _, taken := occupied[slot.ID]; taken {
			continue
		}
		available = append(available, slot)
	}
	sort.Slice(available, func(i, j int) bool {
		if available[i].StartTime.Equal(available[j].StartTime) {
			return available[i].ID < available[j].ID
		}
		return available[i].StartTime.Before(available[j].StartTime)
	})
	if len(available) == 0 {
		return nil, nil
	}
	return available, nil
}

// UsageStats reports per-slot active schedule counts and overall utilization.
func (s *TimeSlotService) UsageStats(ctx context.Context, principal Principal) (TimeSlotUsageStats, error) {
	if s == nil || s.slots == nil {
		return TimeSlotUsageStats{}, fmt.Errorf("time slot repository not configured")
	}
	if !principal.IsAdmin {
		return TimeSlotUsageStats{}, ErrUnauthorized
	}

	slots, err := s.slots.ListTimeSlots(ctx, true)
	if err != nil {
		return TimeSlotUsageStats{}, mapRepoError(err)
	}

	counts := make(map[int64]int)
	if s.bookings != nil {
		bookings, err := s.bookings.ActiveBookings(ctx)
		if err != nil {
			return TimeSlotUsageStats{}, mapRepoError(err)
		}
		for _, booking := range bookings {
			counts[booking.Key.TimeSlotID]++
		}
	}

	stats := TimeSlotUsageStats{Total: len(slots)}
	stats.Slots = make([]SlotUsage, 0, len(slots))
	for _, slot := range slots {
		usage := SlotUsage{TimeSlotID: slot.ID, Name: slot.Name, ActiveSchedules: counts[slot.ID]}
		if usage.ActiveSchedules > 0 {
			stats.Used++
		}
		stats.Slots = append(stats.Slots, usage)
	}
	stats.Unused = stats.Total - stats.Used
	stats.UtilizationPct = timetable.UtilizationPercent(stats.Used, stats.Total)

	return stats, nil
}

func (s *TimeSlotService) ensureNoOverlap(ctx context.Context, start, end time.Time, excludeID int64) error {
	if s.slots == nil {
		return nil
	}
	active, err := s.slots.ListTimeSlots(ctx, false)
	if err != nil {
		return mapRepoError(err)
	}

	conflicts, err := timetable.Overlapping(start, end, toIntervals(active), excludeID)
	if err != nil {
		if errors.Is(err, timetable.ErrInvalidInterval) {
			vErr := &ValidationError{}
			vErr.add("time", "start time must be before end time")
			return vErr
		}
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}

	names := make([]string, 0, len(conflicts))
	for _, conflict := range conflicts {
		names = append(names, conflict.Name)
	}
	return &ConflictError{Message: fmt.Sprintf("time slot overlaps with: %s", strings.Join(names, ", "))}
}

func (s *TimeSlotService) bookingsForSlot(ctx context.Context, timeSlotID int64) ([]timetable.Booking, error) {
	if s.bookings == nil {
		return nil, nil
	}
	bookings, err := s.bookings.ActiveBookings(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	var referencing []timetable.Booking
	for _, booking := range bookings {
		if booking.Key.TimeSlotID == timeSlotID {
			referencing = append(referencing, booking)
		}
	}
	return referencing, nil
}

func toIntervals(slots []TimeSlot) []timetable.Interval {
	intervals := make([]timetable.Interval, 0, len(slots))
	for _, slot := range slots {
		intervals = append(intervals, timetable.Interval{
			ID:     slot.ID,
			Name:   slot.Name,
			Start:  slot.StartTime,
			End:    slot.EndTime,
			Active: slot.IsActive,
		})
	}
	return intervals
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return &ConflictError{Message: "record already exists"}
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "value violates a storage constraint")
		return vErr
	}
	return err
}
