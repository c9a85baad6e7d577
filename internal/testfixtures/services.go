package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/cleanops/internal/application"
	"github.com/example/cleanops/internal/persistence"
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

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Staff          persistence.StaffRepository
	Sessions       persistence.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies
// combined with the factory defaults.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthService(
		deps.Staff,
		deps.Sessions,
		deps.PasswordVerify,
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}

// StaffServiceDeps captures dependencies for constructing a staff service.
type StaffServiceDeps struct {
	Staff        persistence.StaffRepository
	Availability persistence.AvailabilityRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewStaffService builds a staff service using the supplied dependencies.
func (f *ServiceFactory) NewStaffService(deps StaffServiceDeps) *application.StaffService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewStaffService(
		deps.Staff,
		deps.Availability,
		idGen,
		now,
		deps.Logger,
	)
}

// LocationServiceDeps captures dependencies for constructing a location
// service.
type LocationServiceDeps struct {
	Locations   persistence.LocationRepository
	ScanTokens  application.ScanTokenCodec
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewLocationService builds a location service using the supplied
// dependencies.
func (f *ServiceFactory) NewLocationService(deps LocationServiceDeps) *application.LocationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewLocationService(
		deps.Locations,
		deps.ScanTokens,
		idGen,
		now,
		deps.Logger,
	)
}

// JobServiceDeps captures dependencies for constructing a job service.
type JobServiceDeps struct {
	Jobs        persistence.JobRepository
	Locations   persistence.LocationRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewJobService builds a job service using the supplied dependencies.
func (f *ServiceFactory) NewJobService(deps JobServiceDeps) *application.JobService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewJobService(
		deps.Jobs,
		deps.Locations,
		idGen,
		now,
		deps.Logger,
	)
}

// TaskServiceDeps captures dependencies for constructing a task service.
type TaskServiceDeps struct {
	Tasks        persistence.TaskRepository
	Jobs         persistence.JobRepository
	Staff        persistence.StaffRepository
	Locations    persistence.LocationRepository
	Availability persistence.AvailabilityRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewTaskService builds a task service using the supplied dependencies.
func (f *ServiceFactory) NewTaskService(deps TaskServiceDeps) *application.TaskService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewTaskService(
		deps.Tasks,
		deps.Jobs,
		deps.Staff,
		deps.Locations,
		deps.Availability,
		idGen,
		now,
		deps.Logger,
	)
}
