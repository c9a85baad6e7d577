// Package testfixtures centralises deterministic builders shared across the
// test suites: a controllable clock, sequential identifier generation and
// fixture constructors for the persistence models.
package testfixtures

import (
	"time"

	"github.com/example/cleanops/internal/persistence"
)

// ReferenceTime returns the shared deterministic instant fixtures default to.
func ReferenceTime() time.Time {
	return time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
}

// StaffFixture builds persistence.Staff values with sensible defaults.
type StaffFixture struct {
	staff persistence.Staff
}

// StaffOption mutates a StaffFixture.
type StaffOption func(*StaffFixture)

// NewStaffFixture constructs a staff fixture with defaults applied.
func NewStaffFixture(opts ...StaffOption) *StaffFixture {
	base := ReferenceTime()
	fixture := &StaffFixture{staff: persistence.Staff{
		ID:           "staff-1",
		Email:        "staff-1@example.com",
		DisplayName:  "Staff One",
		Role:         "cleaner",
		PasswordHash: "fixture-hash",
		CreatedAt:    base,
		UpdatedAt:    base,
	}}
	for _, opt := range opts {
		opt(fixture)
	}
	return fixture
}

// Persistence returns the built persistence model.
func (f *StaffFixture) Persistence() persistence.Staff {
	return f.staff
}

// WithStaffID overrides the staff identifier.
func WithStaffID(id string) StaffOption {
	return func(f *StaffFixture) { f.staff.ID = id }
}

// WithStaffEmail overrides the staff email address.
func WithStaffEmail(email string) StaffOption {
	return func(f *StaffFixture) { f.staff.Email = email }
}

// WithStaffDisplayName overrides the display name.
func WithStaffDisplayName(name string) StaffOption {
	return func(f *StaffFixture) { f.staff.DisplayName = name }
}

// WithStaffRole overrides the role string.
func WithStaffRole(role string) StaffOption {
	return func(f *StaffFixture) { f.staff.Role = role }
}

// WithStaffPasswordHash overrides the stored password hash.
func WithStaffPasswordHash(hash string) StaffOption {
	return func(f *StaffFixture) { f.staff.PasswordHash = hash }
}

// WithStaffDisabled marks the account disabled.
func WithStaffDisabled(disabled bool) StaffOption {
	return func(f *StaffFixture) { f.staff.Disabled = disabled }
}

// WithStaffTimestamps overrides the created and updated timestamps.
func WithStaffTimestamps(createdAt, updatedAt time.Time) StaffOption {
	return func(f *StaffFixture) {
		f.staff.CreatedAt = createdAt
		f.staff.UpdatedAt = updatedAt
	}
}

// SessionFixture builds persistence.Session values.
type SessionFixture struct {
	session persistence.Session
}

// SessionOption mutates a SessionFixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture constructs a session fixture with defaults applied. The
// default session belongs to staff-1 and expires a day after ReferenceTime.
func NewSessionFixture(opts ...SessionOption) *SessionFixture {
	base := ReferenceTime()
	fixture := &SessionFixture{session: persistence.Session{
		ID:        "session-1",
		StaffID:   "staff-1",
		Token:     "token-1",
		ExpiresAt: base.Add(24 * time.Hour),
		CreatedAt: base,
		UpdatedAt: base,
	}}
	for _, opt := range opts {
		opt(fixture)
	}
	return fixture
}

// Persistence returns the built persistence model.
func (f *SessionFixture) Persistence() persistence.Session {
	return f.session
}

// WithSessionToken overrides the session token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.session.Token = token }
}

// WithSessionStaffID overrides the owning staff member.
func WithSessionStaffID(staffID string) SessionOption {
	return func(f *SessionFixture) { f.session.StaffID = staffID }
}

// WithSessionExpiry overrides the expiry instant.
func WithSessionExpiry(expiresAt time.Time) SessionOption {
	return func(f *SessionFixture) { f.session.ExpiresAt = expiresAt }
}

// WithSessionRevokedAt marks the session revoked.
func WithSessionRevokedAt(revokedAt time.Time) SessionOption {
	return func(f *SessionFixture) { f.session.RevokedAt = &revokedAt }
}

// LocationFixture builds a consistent site/zone/area chain so dependent
// fixtures satisfy foreign keys out of the box.
type LocationFixture struct {
	site persistence.Site
	zone persistence.Zone
	area persistence.Area
}

// LocationOption mutates a LocationFixture.
type LocationOption func(*LocationFixture)

// NewLocationFixture constructs a location chain with defaults applied.
func NewLocationFixture(opts ...LocationOption) *LocationFixture {
	base := ReferenceTime()
	fixture := &LocationFixture{
		site: persistence.Site{ID: "site-1", Name: "Headquarters", Address: "1 Main St", CreatedAt: base, UpdatedAt: base},
		zone: persistence.Zone{ID: "zone-1", SiteID: "site-1", Name: "Ground Floor", CreatedAt: base, UpdatedAt: base},
		area: persistence.Area{ID: "area-1", ZoneID: "zone-1", Name: "Lobby", CreatedAt: base, UpdatedAt: base},
	}
	for _, opt := range opts {
		opt(fixture)
	}
	return fixture
}

// Site returns the built site model.
func (f *LocationFixture) Site() persistence.Site { return f.site }

// Zone returns the built zone model.
func (f *LocationFixture) Zone() persistence.Zone { return f.zone }

// Area returns the built area model.
func (f *LocationFixture) Area() persistence.Area { return f.area }

// WithAreaID overrides the area identifier.
func WithAreaID(id string) LocationOption {
	return func(f *LocationFixture) { f.area.ID = id }
}

// WithAreaName overrides the area name.
func WithAreaName(name string) LocationOption {
	return func(f *LocationFixture) { f.area.Name = name }
}

// JobFixture builds persistence.Job values.
type JobFixture struct {
	job persistence.Job
}

// JobOption mutates a JobFixture.
type JobOption func(*JobFixture)

// NewJobFixture constructs a job fixture with defaults applied. The default
// job belongs to area-1 and runs daily at 06:00.
func NewJobFixture(opts ...JobOption) *JobFixture {
	base := ReferenceTime()
	fixture := &JobFixture{job: persistence.Job{
		ID:        "job-1",
		AreaID:    "area-1",
		Title:     "Mop lobby floor",
		Schedule:  "00 06 * * *",
		CreatedAt: base,
		UpdatedAt: base,
	}}
	for _, opt := range opts {
		opt(fixture)
	}
	return fixture
}

// Persistence returns the built persistence model.
func (f *JobFixture) Persistence() persistence.Job {
	return f.job
}

// WithJobID overrides the job identifier.
func WithJobID(id string) JobOption {
	return func(f *JobFixture) { f.job.ID = id }
}

// WithJobArea overrides the owning area.
func WithJobArea(areaID string) JobOption {
	return func(f *JobFixture) { f.job.AreaID = areaID }
}

// WithJobTitle overrides the title.
func WithJobTitle(title string) JobOption {
	return func(f *JobFixture) { f.job.Title = title }
}

// WithJobSchedule overrides the stored recurrence expression.
func WithJobSchedule(schedule string) JobOption {
	return func(f *JobFixture) { f.job.Schedule = schedule }
}

// TaskFixture builds persistence.Task values.
type TaskFixture struct {
	task persistence.Task
}

// TaskOption mutates a TaskFixture.
type TaskOption func(*TaskFixture)

// NewTaskFixture constructs a task fixture with defaults applied. The default
// task is pending against job-1 in area-1, assigned to staff-1, due an hour
// after ReferenceTime.
func NewTaskFixture(opts ...TaskOption) *TaskFixture {
	base := ReferenceTime()
	fixture := &TaskFixture{task: persistence.Task{
		ID:         "task-1",
		JobID:      "job-1",
		AreaID:     "area-1",
		AssigneeID: "staff-1",
		Status:     "pending",
		DueAt:      base.Add(time.Hour),
		CreatedAt:  base,
		UpdatedAt:  base,
	}}
	for _, opt := range opts {
		opt(fixture)
	}
	return fixture
}

// Persistence returns the built persistence model.
func (f *TaskFixture) Persistence() persistence.Task {
	return f.task
}

// WithTaskID overrides the task identifier.
func WithTaskID(id string) TaskOption {
	return func(f *TaskFixture) { f.task.ID = id }
}

// WithTaskAssignee overrides the assignee.
func WithTaskAssignee(staffID string) TaskOption {
	return func(f *TaskFixture) { f.task.AssigneeID = staffID }
}

// WithTaskStatus overrides the lifecycle status.
func WithTaskStatus(status string) TaskOption {
	return func(f *TaskFixture) { f.task.Status = status }
}

// WithTaskDueAt overrides the due instant.
func WithTaskDueAt(dueAt time.Time) TaskOption {
	return func(f *TaskFixture) { f.task.DueAt = dueAt }
}

// AvailabilityRow builds one override row. Start and end are optional; pass
// empty strings for an inactive day.
func AvailabilityRow(staffID string, weekday time.Weekday, start, end string, active bool) persistence.AvailabilityOverride {
	row := persistence.AvailabilityOverride{
		StaffID:   staffID,
		Weekday:   int(weekday),
		IsActive:  active,
		UpdatedAt: ReferenceTime(),
	}
	if start != "" {
		row.StartTime = &start
	}
	if end != "" {
		row.EndTime = &end
	}
	return row
}
