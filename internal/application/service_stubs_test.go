package application

import (
	"context"
	"time"

	"github.com/example/course-scheduler/internal/timetable"
)

func fixedNow() time.Time {
	return time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
}

type slotRepoStub struct {
	createErr error
	created   TimeSlot

	slots   []TimeSlot
	listErr error

	updateErr error
	updated   TimeSlot

	deleteErr error
	deletedID int64
}

func (r *slotRepoStub) CreateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error) {
	if r.createErr != nil {
		return TimeSlot{}, r.createErr
	}
	slot.ID = int64(len(r.slots) + 1)
	r.created = slot
	return slot, nil
}

func (r *slotRepoStub) GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error) {
	for _, slot := range r.slots {
		if slot.ID == id {
			return slot, nil
		}
	}
	return TimeSlot{}, ErrNotFound
}

func (r *slotRepoStub) UpdateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error) {
	if r.updateErr != nil {
		return TimeSlot{}, r.updateErr
	}
	r.updated = slot
	return slot, nil
}

func (r *slotRepoStub) DeleteTimeSlot(ctx context.Context, id int64) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *slotRepoStub) ListTimeSlots(ctx context.Context, includeInactive bool) ([]TimeSlot, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]TimeSlot, 0, len(r.slots))
	for _, slot := range r.slots {
		if !includeInactive && !slot.IsActive {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

type bookingsStub struct {
	bookings []timetable.Booking
	err      error
}

func (b *bookingsStub) ActiveBookings(ctx context.Context) ([]timetable.Booking, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.bookings, nil
}

type tallyStub struct {
	tallies map[int64]timetable.StatusTally
	err     error
}

func (t *tallyStub) CountEnrollmentsByStatus(ctx context.Context, scheduleID int64) (timetable.StatusTally, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.tallies[scheduleID], nil
}

type scheduleRepoStub struct {
	nextID    int64
	schedules []Schedule

	createErr error
	updateErr error
	listErr   error
}

func (r *scheduleRepoStub) CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error) {
	if r.createErr != nil {
		return Schedule{}, r.createErr
	}
	r.nextID++
	schedule.ID = r.nextID
	r.schedules = append(r.schedules, schedule)
	return schedule, nil
}

func (r *scheduleRepoStub) GetSchedule(ctx context.Context, id int64) (Schedule, error) {
	for _, schedule := range r.schedules {
		if schedule.ID == id {
			return schedule, nil
		}
	}
	return Schedule{}, ErrNotFound
}

func (r *scheduleRepoStub) UpdateSchedule(ctx context.Context, schedule Schedule) (Schedule, error) {
	if r.updateErr != nil {
		return Schedule{}, r.updateErr
	}
	for i := range r.schedules {
		if r.schedules[i].ID == schedule.ID {
			r.schedules[i] = schedule
			return schedule, nil
		}
	}
	return Schedule{}, ErrNotFound
}

func (r *scheduleRepoStub) ListSchedules(ctx context.Context, filter ScheduleRepositoryFilter) ([]Schedule, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []Schedule
	for _, schedule := range r.schedules {
		if !matchesFilter(schedule, filter) {
			continue
		}
		out = append(out, schedule)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *scheduleRepoStub) CountSchedules(ctx context.Context, filter ScheduleRepositoryFilter) (int, error) {
	if r.listErr != nil {
		return 0, r.listErr
	}
	count := 0
	for _, schedule := range r.schedules {
		if matchesFilter(schedule, filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(schedule Schedule, filter ScheduleRepositoryFilter) bool {
	if filter.ActiveOnly && !schedule.IsActive {
		return false
	}
	if filter.UnitID != nil && schedule.Unit.ID != *filter.UnitID {
		return false
	}
	if filter.TimeSlotID != nil && schedule.TimeSlot.ID != *filter.TimeSlotID {
		return false
	}
	if filter.DayID != nil && schedule.Day.ID != *filter.DayID {
		return false
	}
	if filter.Semester != nil && schedule.Semester != *filter.Semester {
		return false
	}
	if filter.AcademicYear != nil && schedule.AcademicYear != *filter.AcademicYear {
		return false
	}
	return true
}

type unitCatalogStub struct {
	units map[int64]Unit
}

func (u *unitCatalogStub) GetUnit(ctx context.Context, id int64) (Unit, error) {
	unit, ok := u.units[id]
	if !ok {
		return Unit{}, ErrNotFound
	}
	return unit, nil
}

type slotCatalogStub struct {
	slots map[int64]TimeSlot
}

func (s *slotCatalogStub) GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return TimeSlot{}, ErrNotFound
	}
	return slot, nil
}

type dayRepoStub struct {
	days map[int64]Day
}

func (d *dayRepoStub) GetDay(ctx context.Context, id int64) (Day, error) {
	day, ok := d.days[id]
	if !ok {
		return Day{}, ErrNotFound
	}
	return day, nil
}

func (d *dayRepoStub) ListDays(ctx context.Context) ([]Day, error) {
	out := make([]Day, 0, len(d.days))
	for _, day := range d.days {
		out = append(out, day)
	}
	return out, nil
}

type unitRepoStub struct {
	nextID int64
	units  []Unit

	createErr error
	updateErr error
	listErr   error
}

func (r *unitRepoStub) CreateUnit(ctx context.Context, unit Unit) (Unit, error) {
	if r.createErr != nil {
		return Unit{}, r.createErr
	}
	r.nextID++
	unit.ID = r.nextID
	r.units = append(r.units, unit)
	return unit, nil
}

func (r *unitRepoStub) GetUnit(ctx context.Context, id int64) (Unit, error) {
	for _, unit := range r.units {
		if unit.ID == id {
			return unit, nil
		}
	}
	return Unit{}, ErrNotFound
}

func (r *unitRepoStub) GetUnitByCode(ctx context.Context, code string) (Unit, error) {
	for _, unit := range r.units {
		if unit.Code == code {
			return unit, nil
		}
	}
	return Unit{}, ErrNotFound
}

func (r *unitRepoStub) UpdateUnit(ctx context.Context, unit Unit) (Unit, error) {
	if r.updateErr != nil {
		return Unit{}, r.updateErr
	}
	for i := range r.units {
		if r.units[i].ID == unit.ID {
			r.units[i] = unit
			return unit, nil
		}
	}
	return Unit{}, ErrNotFound
}

func (r *unitRepoStub) ListUnits(ctx context.Context, includeInactive bool) ([]Unit, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Unit, 0, len(r.units))
	for _, unit := range r.units {
		if !includeInactive && !unit.IsActive {
			continue
		}
		out = append(out, unit)
	}
	return out, nil
}

type scheduleCounterStub struct {
	counts map[int64]int
	err    error
}

func (s *scheduleCounterStub) CountActiveSchedulesForUnit(ctx context.Context, unitID int64) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.counts[unitID], nil
}

type enrollmentRepoStub struct {
	nextID      int64
	enrollments []Enrollment

	createErr error
	updateErr error
	listErr   error
}

func (r *enrollmentRepoStub) CreateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	if r.createErr != nil {
		return Enrollment{}, r.createErr
	}
	r.nextID++
	enrollment.ID = r.nextID
	r.enrollments = append(r.enrollments, enrollment)
	return enrollment, nil
}

func (r *enrollmentRepoStub) GetEnrollment(ctx context.Context, id int64) (Enrollment, error) {
	for _, enrollment := range r.enrollments {
		if enrollment.ID == id {
			return enrollment, nil
		}
	}
	return Enrollment{}, ErrNotFound
}

func (r *enrollmentRepoStub) UpdateEnrollment(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	if r.updateErr != nil {
		return Enrollment{}, r.updateErr
	}
	for i := range r.enrollments {
		if r.enrollments[i].ID == enrollment.ID {
			r.enrollments[i] = enrollment
			return enrollment, nil
		}
	}
	return Enrollment{}, ErrNotFound
}

func (r *enrollmentRepoStub) ListEnrollments(ctx context.Context, filter EnrollmentRepositoryFilter) ([]Enrollment, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []Enrollment
	for _, enrollment := range r.enrollments {
		if filter.ScheduleID != nil && enrollment.ScheduleID != *filter.ScheduleID {
			continue
		}
		if filter.StudentID != nil && enrollment.StudentID != *filter.StudentID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if enrollment.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, enrollment)
	}
	return out, nil
}

type credentialStoreStub struct {
	creds    map[string]AccountCredentials
	accounts map[string]Account
}

func (c *credentialStoreStub) GetAccountCredentialsByEmail(ctx context.Context, email string) (AccountCredentials, error) {
	creds, ok := c.creds[email]
	if !ok {
		return AccountCredentials{}, ErrNotFound
	}
	return creds, nil
}

func (c *credentialStoreStub) GetAccount(ctx context.Context, id string) (Account, error) {
	account, ok := c.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

type sessionRepoStub struct {
	sessions map[string]Session

	createErr error
	updateErr error
	revokeErr error
	deleteErr error
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	if s.sessions == nil {
		s.sessions = make(map[string]Session)
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepoStub) GetSession(ctx context.Context, token string) (Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionRepoStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	if s.updateErr != nil {
		return Session{}, s.updateErr
	}
	if s.sessions == nil {
		s.sessions = make(map[string]Session)
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepoStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error) {
	if s.revokeErr != nil {
		return Session{}, s.revokeErr
	}
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[token] = session
	return session, nil
}

func (s *sessionRepoStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for token, session := range s.sessions {
		if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

type accountRepoStub struct {
	accounts  []Account
	hashes    map[string]string
	createErr error
	updateErr error
	deleteErr error
	listErr   error
	deletedID string
}

func (r *accountRepoStub) CreateAccount(ctx context.Context, account Account, passwordHash string) (Account, error) {
	if r.createErr != nil {
		return Account{}, r.createErr
	}
	if r.hashes == nil {
		r.hashes = make(map[string]string)
	}
	r.hashes[account.ID] = passwordHash
	r.accounts = append(r.accounts, account)
	return account, nil
}

func (r *accountRepoStub) GetAccount(ctx context.Context, id string) (Account, error) {
	for _, account := range r.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *accountRepoStub) UpdateAccount(ctx context.Context, account Account) (Account, error) {
	if r.updateErr != nil {
		return Account{}, r.updateErr
	}
	for i := range r.accounts {
		if r.accounts[i].ID == account.ID {
			r.accounts[i] = account
			return account, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *accountRepoStub) DeleteAccount(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *accountRepoStub) ListAccounts(ctx context.Context) ([]Account, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Account, len(r.accounts))
	copy(out, r.accounts)
	return out, nil
}
