package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/course-scheduler/internal/timetable"
)

// EnrollmentRepository captures the persistence interactions needed by the service.
type EnrollmentRepository interface {
	CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	GetEnrollment(ctx context.Context, id int64) (Enrollment, error)
	UpdateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error)
	ListEnrollments(ctx context.Context, filter EnrollmentRepositoryFilter) ([]Enrollment, error)
}

// EnrollmentRepositoryFilter narrows enrollment queries.
type EnrollmentRepositoryFilter struct {
	ScheduleID *int64
	StudentID  *string
	Statuses   []timetable.EnrollmentStatus
}

// ScheduleSource exposes schedule lookup for enrollment checks.
type ScheduleSource interface {
	GetSchedule(ctx context.Context, id int64) (Schedule, error)
}

// EnrollmentService manages student enrollments and their status lifecycle.
// New enrollments start PENDING; administrators move them to APPROVED,
// REJECTED, or WAITLISTED, and students may withdraw their own.
type EnrollmentService struct {
	enrollments EnrollmentRepository
	schedules   ScheduleSource
	tally       EnrollmentTally
	now         func() time.Time
	logger      *slog.Logger
}

// NewEnrollmentService wires dependencies for enrollment operations.
func NewEnrollmentService(enrollments EnrollmentRepository, schedules ScheduleSource, tally EnrollmentTally, now func() time.Time) *EnrollmentService {
	return NewEnrollmentServiceWithLogger(enrollments, schedules, tally, now, nil)
}

// NewEnrollmentServiceWithLogger constructs an enrollment service with a specified logger.
func NewEnrollmentServiceWithLogger(enrollments EnrollmentRepository, schedules ScheduleSource, tally EnrollmentTally, now func() time.Time, logger *slog.Logger) *EnrollmentService {
	if now == nil {
		now = time.Now
	}
	return &EnrollmentService{
		enrollments: enrollments,
		schedules:   schedules,
		tally:       tally,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EnrollmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EnrollmentService", operation, attrs...)
}

// Enroll registers a student against an active schedule with status PENDING.
// A student may hold at most one non-terminal enrollment per schedule.
func (s *EnrollmentService) Enroll(ctx context.Context, params EnrollParams) (enrollment Enrollment, err error) {
	if s == nil || s.enrollments == nil {
		err = fmt.Errorf("enrollment repository not configured")
		return
	}

	studentID := params.StudentID
	if studentID == "" {
		studentID = params.Principal.AccountID
	}

	logger := s.loggerWith(ctx, "Enroll",
		"principal_id", params.Principal.AccountID,
		"schedule_id", params.ScheduleID,
		"student_id", studentID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to enroll", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("enrollment_id", enrollment.ID).InfoContext(ctx, "enrollment created")
	}()

	if studentID == "" {
		vErr := &ValidationError{}
		vErr.add("student_id", "student id is required")
		err = vErr
		return
	}
	if studentID != params.Principal.AccountID && !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if params.ScheduleID <= 0 {
		vErr := &ValidationError{}
		vErr.add("schedule_id", "schedule id is required")
		err = vErr
		return
	}

	if s.schedules != nil {
		var schedule Schedule
		schedule, err = s.schedules.GetSchedule(ctx, params.ScheduleID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		if !schedule.IsActive {
			err = ErrNotFound
			return
		}
	}

	var open []Enrollment
	open, err = s.enrollments.ListEnrollments(ctx, EnrollmentRepositoryFilter{
		ScheduleID: &params.ScheduleID,
		StudentID:  &studentID,
		Statuses:   timetable.NonTerminalStatuses(),
	})
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if len(open) > 0 {
		err = &ConflictError{Message: "student is already enrolled in this schedule"}
		return
	}

	now := s.now()
	enrollment, err = s.enrollments.CreateEnrollment(ctx, Enrollment{
		ScheduleID: params.ScheduleID,
		StudentID:  studentID,
		Status:     timetable.StatusPending,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// UpdateStatus applies an administrator's status decision. Approvals are
// blocked once the schedule's effective capacity is reached.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, params UpdateEnrollmentStatusParams) (enrollment Enrollment, err error) {
	if s == nil || s.enrollments == nil {
		err = fmt.Errorf("enrollment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateStatus",
		"principal_id", params.Principal.AccountID,
		"enrollment_id", params.EnrollmentID,
		"status", string(params.Status),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update enrollment status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "enrollment status updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if _, parseErr := timetable.ParseEnrollmentStatus(string(params.Status)); parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("status", "status is not recognized")
		err = vErr
		return
	}

	var existing Enrollment
	existing, err = s.enrollments.GetEnrollment(ctx, params.EnrollmentID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if params.Status == timetable.StatusApproved && existing.Status != timetable.StatusApproved {
		if err = s.ensureSeatAvailable(ctx, existing.ScheduleID); err != nil {
			return
		}
	}

	existing.Status = params.Status
	existing.UpdatedAt = s.now()
	enrollment, err = s.enrollments.UpdateEnrollment(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Withdraw moves an enrollment to WITHDRAWN. The owning student or an
// administrator may withdraw.
func (s *EnrollmentService) Withdraw(ctx context.Context, principal Principal, enrollmentID int64) (Enrollment, error) {
	if s == nil || s.enrollments == nil {
		return Enrollment{}, fmt.Errorf("enrollment repository not configured")
	}

	logger := s.loggerWith(ctx, "Withdraw", "principal_id", principal.AccountID, "enrollment_id", enrollmentID)

	existing, err := s.enrollments.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, mapRepoError(err)
	}
	if existing.StudentID != principal.AccountID && !principal.IsAdmin {
		return Enrollment{}, ErrUnauthorized
	}
	if existing.Status.Terminal() {
		vErr := &ValidationError{}
		vErr.add("status", "enrollment is already closed")
		return Enrollment{}, vErr
	}

	existing.Status = timetable.StatusWithdrawn
	existing.UpdatedAt = s.now()
	updated, err := s.enrollments.UpdateEnrollment(ctx, existing)
	if err != nil {
		return Enrollment{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "enrollment withdrawn")
	return updated, nil
}

// ListForSchedule returns every enrollment against a schedule. Restricted to
// administrators.
func (s *EnrollmentService) ListForSchedule(ctx context.Context, principal Principal, scheduleID int64) ([]Enrollment, error) {
	if s == nil || s.enrollments == nil {
		return nil, fmt.Errorf("enrollment repository not configured")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	enrollments, err := s.enrollments.ListEnrollments(ctx, EnrollmentRepositoryFilter{ScheduleID: &scheduleID})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return enrollments, nil
}

// ListForStudent returns a student's enrollments. Students may list their own;
// administrators may list anyone's.
func (s *EnrollmentService) ListForStudent(ctx context.Context, principal Principal, studentID string) ([]Enrollment, error) {
	if s == nil || s.enrollments == nil {
		return nil, fmt.Errorf("enrollment repository not configured")
	}
	if studentID == "" {
		studentID = principal.AccountID
	}
	if studentID != principal.AccountID && !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	enrollments, err := s.enrollments.ListEnrollments(ctx, EnrollmentRepositoryFilter{StudentID: &studentID})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return enrollments, nil
}

func (s *EnrollmentService) ensureSeatAvailable(ctx context.Context, scheduleID int64) error {
	if s.schedules == nil || s.tally == nil {
		return nil
	}
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return mapRepoError(err)
	}
	tally, err := s.tally.CountEnrollmentsByStatus(ctx, scheduleID)
	if err != nil {
		return mapRepoError(err)
	}
	capacity := schedule.EffectiveCapacity()
	if approved := tally[timetable.StatusApproved]; approved >= capacity {
		return &ConflictError{Message: fmt.Sprintf("schedule is full: %d of %d seats approved", approved, capacity)}
	}
	return nil
}
