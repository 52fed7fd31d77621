package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/course-scheduler/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) nowFn(now func() time.Time) func() time.Time {
	if now != nil {
		return now
	}
	return f.Clock.NowFunc()
}

// TimeSlotServiceDeps captures dependencies for constructing a time slot service.
type TimeSlotServiceDeps struct {
	Slots       application.TimeSlotRepository
	Bookings    application.BookingSource
	Enrollments application.EnrollmentTally
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewTimeSlotService builds a time slot service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewTimeSlotService(deps TimeSlotServiceDeps) *application.TimeSlotService {
	return application.NewTimeSlotServiceWithLogger(
		deps.Slots,
		deps.Bookings,
		deps.Enrollments,
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// UnitServiceDeps captures dependencies for constructing a unit service.
type UnitServiceDeps struct {
	Units     application.UnitRepository
	Schedules application.ScheduleCounter
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewUnitService builds a unit service using the supplied dependencies.
func (f *ServiceFactory) NewUnitService(deps UnitServiceDeps) *application.UnitService {
	return application.NewUnitServiceWithLogger(
		deps.Units,
		deps.Schedules,
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// ScheduleServiceDeps captures dependencies for constructing a schedule service.
type ScheduleServiceDeps struct {
	Schedules   application.ScheduleRepository
	Units       application.UnitCatalog
	Slots       application.TimeSlotCatalog
	Days        application.DayCatalog
	Bookings    application.BookingSource
	Enrollments application.EnrollmentTally
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewScheduleService builds a schedule service using the supplied dependencies.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	return application.NewScheduleServiceWithLogger(
		deps.Schedules,
		deps.Units,
		deps.Slots,
		deps.Days,
		deps.Bookings,
		deps.Enrollments,
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// EnrollmentServiceDeps captures dependencies for constructing an enrollment service.
type EnrollmentServiceDeps struct {
	Enrollments application.EnrollmentRepository
	Schedules   application.ScheduleSource
	Tally       application.EnrollmentTally
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewEnrollmentService builds an enrollment service using the supplied dependencies.
func (f *ServiceFactory) NewEnrollmentService(deps EnrollmentServiceDeps) *application.EnrollmentService {
	return application.NewEnrollmentServiceWithLogger(
		deps.Enrollments,
		deps.Schedules,
		deps.Tally,
		f.nowFn(deps.Now),
		deps.Logger,
	)
}

// AccountServiceDeps captures dependencies for constructing an account service.
type AccountServiceDeps struct {
	Accounts    application.AccountRepository
	IDGenerator func() string
	Now         func() time.Time
}

// NewAccountService builds an account service using the supplied dependencies.
func (f *ServiceFactory) NewAccountService(deps AccountServiceDeps) *application.AccountService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	return application.NewAccountService(deps.Accounts, idGen, f.nowFn(deps.Now))
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Credentials    application.CredentialStore
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		f.nowFn(deps.Now),
		deps.SessionTTL,
		deps.Logger,
	)
}
