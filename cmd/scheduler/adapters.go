package main

import (
	"context"
	"time"

	"github.com/example/course-scheduler/internal/application"
	"github.com/example/course-scheduler/internal/persistence"
	"github.com/example/course-scheduler/internal/timetable"
)

type timeSlotRepositoryAdapter struct {
	repo persistence.TimeSlotRepository
}

func newTimeSlotRepositoryAdapter(repo persistence.TimeSlotRepository) *timeSlotRepositoryAdapter {
	return &timeSlotRepositoryAdapter{repo: repo}
}

func (a *timeSlotRepositoryAdapter) CreateTimeSlot(ctx context.Context, slot application.TimeSlot) (application.TimeSlot, error) {
	stored, err := a.repo.CreateTimeSlot(ctx, toPersistenceTimeSlot(slot))
	if err != nil {
		return application.TimeSlot{}, err
	}
	return toApplicationTimeSlot(stored), nil
}

func (a *timeSlotRepositoryAdapter) GetTimeSlot(ctx context.Context, id int64) (application.TimeSlot, error) {
	stored, err := a.repo.GetTimeSlot(ctx, id)
	if err != nil {
		return application.TimeSlot{}, err
	}
	return toApplicationTimeSlot(stored), nil
}

func (a *timeSlotRepositoryAdapter) UpdateTimeSlot(ctx context.Context, slot application.TimeSlot) (application.TimeSlot, error) {
	stored, err := a.repo.UpdateTimeSlot(ctx, toPersistenceTimeSlot(slot))
	if err != nil {
		return application.TimeSlot{}, err
	}
	return toApplicationTimeSlot(stored), nil
}

func (a *timeSlotRepositoryAdapter) DeleteTimeSlot(ctx context.Context, id int64) error {
	return a.repo.DeleteTimeSlot(ctx, id)
}

func (a *timeSlotRepositoryAdapter) ListTimeSlots(ctx context.Context, includeInactive bool) ([]application.TimeSlot, error) {
	models, err := a.repo.ListTimeSlots(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	slots := make([]application.TimeSlot, 0, len(models))
	for _, model := range models {
		slots = append(slots, toApplicationTimeSlot(model))
	}
	return slots, nil
}

type unitRepositoryAdapter struct {
	repo persistence.UnitRepository
}

func newUnitRepositoryAdapter(repo persistence.UnitRepository) *unitRepositoryAdapter {
	return &unitRepositoryAdapter{repo: repo}
}

func (a *unitRepositoryAdapter) CreateUnit(ctx context.Context, unit application.Unit) (application.Unit, error) {
	stored, err := a.repo.CreateUnit(ctx, toPersistenceUnit(unit))
	if err != nil {
		return application.Unit{}, err
	}
	return toApplicationUnit(stored), nil
}

func (a *unitRepositoryAdapter) GetUnit(ctx context.Context, id int64) (application.Unit, error) {
	stored, err := a.repo.GetUnit(ctx, id)
	if err != nil {
		return application.Unit{}, err
	}
	return toApplicationUnit(stored), nil
}

func (a *unitRepositoryAdapter) GetUnitByCode(ctx context.Context, code string) (application.Unit, error) {
	stored, err := a.repo.GetUnitByCode(ctx, code)
	if err != nil {
		return application.Unit{}, err
	}
	return toApplicationUnit(stored), nil
}

func (a *unitRepositoryAdapter) UpdateUnit(ctx context.Context, unit application.Unit) (application.Unit, error) {
	stored, err := a.repo.UpdateUnit(ctx, toPersistenceUnit(unit))
	if err != nil {
		return application.Unit{}, err
	}
	return toApplicationUnit(stored), nil
}

func (a *unitRepositoryAdapter) ListUnits(ctx context.Context, includeInactive bool) ([]application.Unit, error) {
	models, err := a.repo.ListUnits(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	units := make([]application.Unit, 0, len(models))
	for _, model := range models {
		units = append(units, toApplicationUnit(model))
	}
	return units, nil
}

type dayRepositoryAdapter struct {
	repo persistence.DayRepository
}

func newDayRepositoryAdapter(repo persistence.DayRepository) *dayRepositoryAdapter {
	return &dayRepositoryAdapter{repo: repo}
}

func (a *dayRepositoryAdapter) GetDay(ctx context.Context, id int64) (application.Day, error) {
	stored, err := a.repo.GetDay(ctx, id)
	if err != nil {
		return application.Day{}, err
	}
	return toApplicationDay(stored), nil
}

func (a *dayRepositoryAdapter) ListDays(ctx context.Context) ([]application.Day, error) {
	models, err := a.repo.ListDays(ctx)
	if err != nil {
		return nil, err
	}
	days := make([]application.Day, 0, len(models))
	for _, model := range models {
		days = append(days, toApplicationDay(model))
	}
	return days, nil
}

// scheduleRepositoryAdapter resolves the unit, time slot, and day references of
// each stored schedule row so the application layer always works with fully
// joined schedules.
type scheduleRepositoryAdapter struct {
	schedules persistence.ScheduleRepository
	units     persistence.UnitRepository
	slots     persistence.TimeSlotRepository
	days      persistence.DayRepository
}

func newScheduleRepositoryAdapter(schedules persistence.ScheduleRepository, units persistence.UnitRepository, slots persistence.TimeSlotRepository, days persistence.DayRepository) *scheduleRepositoryAdapter {
	return &scheduleRepositoryAdapter{schedules: schedules, units: units, slots: slots, days: days}
}

func (a *scheduleRepositoryAdapter) CreateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	stored, err := a.schedules.CreateSchedule(ctx, toPersistenceSchedule(schedule))
	if err != nil {
		return application.Schedule{}, err
	}
	return a.resolve(ctx, stored, newReferenceCache())
}

func (a *scheduleRepositoryAdapter) GetSchedule(ctx context.Context, id int64) (application.Schedule, error) {
	stored, err := a.schedules.GetSchedule(ctx, id)
	if err != nil {
		return application.Schedule{}, err
	}
	return a.resolve(ctx, stored, newReferenceCache())
}

func (a *scheduleRepositoryAdapter) UpdateSchedule(ctx context.Context, schedule application.Schedule) (application.Schedule, error) {
	stored, err := a.schedules.UpdateSchedule(ctx, toPersistenceSchedule(schedule))
	if err != nil {
		return application.Schedule{}, err
	}
	return a.resolve(ctx, stored, newReferenceCache())
}

func (a *scheduleRepositoryAdapter) ListSchedules(ctx context.Context, filter application.ScheduleRepositoryFilter) ([]application.Schedule, error) {
	models, err := a.schedules.ListSchedules(ctx, toPersistenceScheduleFilter(filter))
	if err != nil {
		return nil, err
	}

	cache := newReferenceCache()
	schedules := make([]application.Schedule, 0, len(models))
	for _, model := range models {
		schedule, err := a.resolve(ctx, model, cache)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (a *scheduleRepositoryAdapter) CountSchedules(ctx context.Context, filter application.ScheduleRepositoryFilter) (int, error) {
	return a.schedules.CountSchedules(ctx, toPersistenceScheduleFilter(filter))
}

// referenceCache keeps unit, slot, and day lookups from repeating while one
// listing is being resolved.
type referenceCache struct {
	units map[int64]application.Unit
	slots map[int64]application.TimeSlot
	days  map[int64]application.Day
}

func newReferenceCache() *referenceCache {
	return &referenceCache{
		units: make(map[int64]application.Unit),
		slots: make(map[int64]application.TimeSlot),
		days:  make(map[int64]application.Day),
	}
}

func (a *scheduleRepositoryAdapter) resolve(ctx context.Context, model persistence.Schedule, cache *referenceCache) (application.Schedule, error) {
	unit, ok := cache.units[model.UnitID]
	if !ok {
		stored, err := a.units.GetUnit(ctx, model.UnitID)
		if err != nil {
			return application.Schedule{}, err
		}
		unit = toApplicationUnit(stored)
		cache.units[model.UnitID] = unit
	}

	slot, ok := cache.slots[model.TimeSlotID]
	if !ok {
		stored, err := a.slots.GetTimeSlot(ctx, model.TimeSlotID)
		if err != nil {
			return application.Schedule{}, err
		}
		slot = toApplicationTimeSlot(stored)
		cache.slots[model.TimeSlotID] = slot
	}

	day, ok := cache.days[model.DayID]
	if !ok {
		stored, err := a.days.GetDay(ctx, model.DayID)
		if err != nil {
			return application.Schedule{}, err
		}
		day = toApplicationDay(stored)
		cache.days[model.DayID] = day
	}

	return application.Schedule{
		ID:           model.ID,
		Unit:         unit,
		TimeSlot:     slot,
		Day:          day,
		Semester:     model.Semester,
		AcademicYear: model.AcademicYear,
		TutorName:    cloneString(model.TutorName),
		Location:     cloneString(model.Location),
		MaxCapacity:  cloneInt(model.MaxCapacity),
		IsActive:     model.IsActive,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}, nil
}

// bookingSourceAdapter projects the active schedules into weekly slot bookings
// with display labels such as "CS101 on Monday at Morning A".
type bookingSourceAdapter struct {
	schedules persistence.ScheduleRepository
	units     persistence.UnitRepository
	slots     persistence.TimeSlotRepository
	days      persistence.DayRepository
}

func newBookingSourceAdapter(schedules persistence.ScheduleRepository, units persistence.UnitRepository, slots persistence.TimeSlotRepository, days persistence.DayRepository) *bookingSourceAdapter {
	return &bookingSourceAdapter{schedules: schedules, units: units, slots: slots, days: days}
}

func (a *bookingSourceAdapter) ActiveBookings(ctx context.Context) ([]timetable.Booking, error) {
	models, err := a.schedules.ListSchedules(ctx, persistence.ScheduleFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	unitCodes := make(map[int64]string)
	slotNames := make(map[int64]string)
	dayNames := make(map[int64]string)

	bookings := make([]timetable.Booking, 0, len(models))
	for _, model := range models {
		code, ok := unitCodes[model.UnitID]
		if !ok {
			unit, err := a.units.GetUnit(ctx, model.UnitID)
			if err != nil {
				return nil, err
			}
			code = unit.Code
			unitCodes[model.UnitID] = code
		}
		slotName, ok := slotNames[model.TimeSlotID]
		if !ok {
			slot, err := a.slots.GetTimeSlot(ctx, model.TimeSlotID)
			if err != nil {
				return nil, err
			}
			slotName = slot.Name
			slotNames[model.TimeSlotID] = slotName
		}
		dayName, ok := dayNames[model.DayID]
		if !ok {
			day, err := a.days.GetDay(ctx, model.DayID)
			if err != nil {
				return nil, err
			}
			dayName = day.Name
			dayNames[model.DayID] = dayName
		}

		bookings = append(bookings, timetable.Booking{
			ScheduleID: model.ID,
			UnitID:     model.UnitID,
			Key: timetable.SlotKey{
				TimeSlotID:   model.TimeSlotID,
				DayID:        model.DayID,
				Semester:     model.Semester,
				AcademicYear: model.AcademicYear,
			},
			Active: model.IsActive,
			Label:  code + " on " + dayName + " at " + slotName,
		})
	}
	return bookings, nil
}

type scheduleCounterAdapter struct {
	repo persistence.ScheduleRepository
}

func newScheduleCounterAdapter(repo persistence.ScheduleRepository) *scheduleCounterAdapter {
	return &scheduleCounterAdapter{repo: repo}
}

func (a *scheduleCounterAdapter) CountActiveSchedulesForUnit(ctx context.Context, unitID int64) (int, error) {
	return a.repo.CountSchedules(ctx, persistence.ScheduleFilter{UnitID: &unitID, ActiveOnly: true})
}

type enrollmentRepositoryAdapter struct {
	repo persistence.EnrollmentRepository
}

func newEnrollmentRepositoryAdapter(repo persistence.EnrollmentRepository) *enrollmentRepositoryAdapter {
	return &enrollmentRepositoryAdapter{repo: repo}
}

func (a *enrollmentRepositoryAdapter) CreateEnrollment(ctx context.Context, enrollment application.Enrollment) (application.Enrollment, error) {
	stored, err := a.repo.CreateEnrollment(ctx, toPersistenceEnrollment(enrollment))
	if err != nil {
		return application.Enrollment{}, err
	}
	return toApplicationEnrollment(stored), nil
}

func (a *enrollmentRepositoryAdapter) GetEnrollment(ctx context.Context, id int64) (application.Enrollment, error) {
	stored, err := a.repo.GetEnrollment(ctx, id)
	if err != nil {
		return application.Enrollment{}, err
	}
	return toApplicationEnrollment(stored), nil
}

func (a *enrollmentRepositoryAdapter) UpdateEnrollment(ctx context.Context, enrollment application.Enrollment) (application.Enrollment, error) {
	stored, err := a.repo.UpdateEnrollment(ctx, toPersistenceEnrollment(enrollment))
	if err != nil {
		return application.Enrollment{}, err
	}
	return toApplicationEnrollment(stored), nil
}

func (a *enrollmentRepositoryAdapter) ListEnrollments(ctx context.Context, filter application.EnrollmentRepositoryFilter) ([]application.Enrollment, error) {
	models, err := a.repo.ListEnrollments(ctx, persistence.EnrollmentFilter{
		ScheduleID: cloneInt64(filter.ScheduleID),
		StudentID:  cloneString(filter.StudentID),
		Statuses:   append([]timetable.EnrollmentStatus(nil), filter.Statuses...),
	})
	if err != nil {
		return nil, err
	}
	enrollments := make([]application.Enrollment, 0, len(models))
	for _, model := range models {
		enrollments = append(enrollments, toApplicationEnrollment(model))
	}
	return enrollments, nil
}

type accountRepositoryAdapter struct {
	repo persistence.AccountRepository
}

func newAccountRepositoryAdapter(repo persistence.AccountRepository) *accountRepositoryAdapter {
	return &accountRepositoryAdapter{repo: repo}
}

func (a *accountRepositoryAdapter) CreateAccount(ctx context.Context, account application.Account, passwordHash string) (application.Account, error) {
	if err := a.repo.CreateAccount(ctx, toPersistenceAccount(account, passwordHash)); err != nil {
		return application.Account{}, err
	}
	stored, err := a.repo.GetAccount(ctx, account.ID)
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

func (a *accountRepositoryAdapter) GetAccount(ctx context.Context, id string) (application.Account, error) {
	stored, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

func (a *accountRepositoryAdapter) UpdateAccount(ctx context.Context, account application.Account) (application.Account, error) {
	// The application model never carries the hash, so the stored one is kept.
	current, err := a.repo.GetAccount(ctx, account.ID)
	if err != nil {
		return application.Account{}, err
	}
	if err := a.repo.UpdateAccount(ctx, toPersistenceAccount(account, current.PasswordHash)); err != nil {
		return application.Account{}, err
	}
	stored, err := a.repo.GetAccount(ctx, account.ID)
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

func (a *accountRepositoryAdapter) DeleteAccount(ctx context.Context, id string) error {
	return a.repo.DeleteAccount(ctx, id)
}

func (a *accountRepositoryAdapter) ListAccounts(ctx context.Context) ([]application.Account, error) {
	models, err := a.repo.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	accounts := make([]application.Account, 0, len(models))
	for _, model := range models {
		accounts = append(accounts, toApplicationAccount(model))
	}
	return accounts, nil
}

type credentialStoreAdapter struct {
	repo persistence.AccountRepository
}

func newCredentialStoreAdapter(repo persistence.AccountRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetAccountCredentialsByEmail(ctx context.Context, email string) (application.AccountCredentials, error) {
	stored, err := a.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return application.AccountCredentials{}, err
	}
	return application.AccountCredentials{
		Account:      toApplicationAccount(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetAccount(ctx context.Context, id string) (application.Account, error) {
	stored, err := a.repo.GetAccount(ctx, id)
	if err != nil {
		return application.Account{}, err
	}
	return toApplicationAccount(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.UpdateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

func toApplicationTimeSlot(model persistence.TimeSlot) application.TimeSlot {
	return application.TimeSlot{
		ID:        model.ID,
		Name:      model.Name,
		StartTime: model.StartTime,
		EndTime:   model.EndTime,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceTimeSlot(slot application.TimeSlot) persistence.TimeSlot {
	return persistence.TimeSlot{
		ID:        slot.ID,
		Name:      slot.Name,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		IsActive:  slot.IsActive,
		CreatedAt: slot.CreatedAt,
		UpdatedAt: slot.UpdatedAt,
	}
}

func toApplicationUnit(model persistence.Unit) application.Unit {
	return application.Unit{
		ID:          model.ID,
		Code:        model.Code,
		Title:       model.Title,
		Description: cloneString(model.Description),
		Credits:     model.Credits,
		Capacity:    model.Capacity,
		IsActive:    model.IsActive,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUnit(unit application.Unit) persistence.Unit {
	return persistence.Unit{
		ID:          unit.ID,
		Code:        unit.Code,
		Title:       unit.Title,
		Description: cloneString(unit.Description),
		Credits:     unit.Credits,
		Capacity:    unit.Capacity,
		IsActive:    unit.IsActive,
		CreatedAt:   unit.CreatedAt,
		UpdatedAt:   unit.UpdatedAt,
	}
}

func toApplicationDay(model persistence.Day) application.Day {
	return application.Day{ID: model.ID, Name: model.Name, Position: model.Position}
}

func toPersistenceSchedule(schedule application.Schedule) persistence.Schedule {
	return persistence.Schedule{
		ID:           schedule.ID,
		UnitID:       schedule.Unit.ID,
		TimeSlotID:   schedule.TimeSlot.ID,
		DayID:        schedule.Day.ID,
		Semester:     schedule.Semester,
		AcademicYear: schedule.AcademicYear,
		TutorName:    cloneString(schedule.TutorName),
		Location:     cloneString(schedule.Location),
		MaxCapacity:  cloneInt(schedule.MaxCapacity),
		IsActive:     schedule.IsActive,
		CreatedAt:    schedule.CreatedAt,
		UpdatedAt:    schedule.UpdatedAt,
	}
}

func toPersistenceScheduleFilter(filter application.ScheduleRepositoryFilter) persistence.ScheduleFilter {
	return persistence.ScheduleFilter{
		UnitID:       cloneInt64(filter.UnitID),
		TimeSlotID:   cloneInt64(filter.TimeSlotID),
		DayID:        cloneInt64(filter.DayID),
		Semester:     cloneString(filter.Semester),
		AcademicYear: cloneInt(filter.AcademicYear),
		ActiveOnly:   filter.ActiveOnly,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
}

func toApplicationEnrollment(model persistence.Enrollment) application.Enrollment {
	return application.Enrollment{
		ID:         model.ID,
		ScheduleID: model.ScheduleID,
		StudentID:  model.StudentID,
		Status:     model.Status,
		EnrolledAt: model.EnrolledAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func toPersistenceEnrollment(enrollment application.Enrollment) persistence.Enrollment {
	return persistence.Enrollment{
		ID:         enrollment.ID,
		ScheduleID: enrollment.ScheduleID,
		StudentID:  enrollment.StudentID,
		Status:     enrollment.Status,
		EnrolledAt: enrollment.EnrolledAt,
		UpdatedAt:  enrollment.UpdatedAt,
	}
}

func toApplicationAccount(model persistence.Account) application.Account {
	return application.Account{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		IsAdmin:     model.IsAdmin,
		Disabled:    model.Disabled,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceAccount(account application.Account, passwordHash string) persistence.Account {
	return persistence.Account{
		ID:           account.ID,
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		PasswordHash: passwordHash,
		IsAdmin:      account.IsAdmin,
		Disabled:     account.Disabled,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		AccountID: model.AccountID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		AccountID: session.AccountID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt64(value *int64) *int64 {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
