package persistence

import (
	"context"
	"time"
)

// StaffRepository exposes CRUD operations for staff accounts.
type StaffRepository interface {
	CreateStaff(ctx context.Context, staff Staff) error
	UpdateStaff(ctx context.Context, staff Staff) error
	GetStaff(ctx context.Context, id string) (Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (Staff, error)
	ListStaff(ctx context.Context) ([]Staff, error)
	DeleteStaff(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// LocationRepository exposes CRUD operations for the site/zone/area hierarchy.
type LocationRepository interface {
	CreateSite(ctx context.Context, site Site) error
	UpdateSite(ctx context.Context, site Site) error
	GetSite(ctx context.Context, id string) (Site, error)
	ListSites(ctx context.Context) ([]Site, error)
	DeleteSite(ctx context.Context, id string) error

	CreateZone(ctx context.Context, zone Zone) error
	GetZone(ctx context.Context, id string) (Zone, error)
	ListZones(ctx context.Context, siteID string) ([]Zone, error)
	DeleteZone(ctx context.Context, id string) error

	CreateArea(ctx context.Context, area Area) error
	UpdateArea(ctx context.Context, area Area) error
	GetArea(ctx context.Context, id string) (Area, error)
	ListAreas(ctx context.Context, zoneID string) ([]Area, error)
	DeleteArea(ctx context.Context, id string) error
}

// JobRepository stores cleaning job templates.
type JobRepository interface {
	CreateJob(ctx context.Context, job Job) error
	UpdateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, id string) (Job, error)
	ListJobs(ctx context.Context, areaID string) ([]Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// TaskFilter narrows task queries. Zero values match everything.
type TaskFilter struct {
	AreaID     string
	AssigneeID string
	Status     string
	DueAfter   *time.Time
	DueBefore  *time.Time
}

// TaskRepository stores cleaning task instances.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	UpdateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// AvailabilityRepository stores sparse weekly availability overrides.
type AvailabilityRepository interface {
	ListAvailability(ctx context.Context, staffID string) ([]AvailabilityOverride, error)
	ReplaceAvailability(ctx context.Context, staffID string, rows []AvailabilityOverride) error
}
