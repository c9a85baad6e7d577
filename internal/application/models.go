package application

import (
	"time"

	"github.com/example/cleanops/internal/availability"
	"github.com/example/cleanops/internal/recurrence"
	"github.com/example/cleanops/internal/routing"
)

// Principal represents the authenticated staff member invoking a service method.
type Principal struct {
	StaffID string
	Role    routing.Role
}

// IsAdmin reports whether the principal holds the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == routing.RoleAdmin
}

// CanSupervise reports whether the principal may assign and verify tasks.
func (p Principal) CanSupervise() bool {
	return p.Role == routing.RoleSupervisor || p.Role == routing.RoleAdmin
}

// StaffInput captures caller provided staff fields.
type StaffInput struct {
	Email       string
	DisplayName string
	Role        routing.Role
	Password    string
}

// Staff represents a workforce account exposed by the application services.
type Staff struct {
	ID          string
	Email       string
	DisplayName string
	Role        routing.Role
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated session issued to a staff member.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthenticateParams captures the data required to authenticate a staff member.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	Staff   Staff
	Session Session
}

// SiteInput captures caller provided site fields.
type SiteInput struct {
	Name    string
	Address string
}

// Site is the top of the location hierarchy.
type Site struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ZoneInput captures caller provided zone fields.
type ZoneInput struct {
	SiteID string
	Name   string
}

// Zone groups areas within a site.
type Zone struct {
	ID        string
	SiteID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AreaInput captures caller provided area fields.
type AreaInput struct {
	ZoneID      string
	Name        string
	Description *string
}

// Area is the leaf location that tasks and scans reference.
type Area struct {
	ID          string
	ZoneID      string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobInput captures caller provided job template fields. Recurrence is the
// structured schedule collected from the form; the service encodes it into
// the stored expression.
type JobInput struct {
	AreaID     string
	Title      string
	Notes      *string
	Recurrence recurrence.Descriptor
}

// Job represents a cleaning job template. Schedule holds the stored
// expression and SchedulePhrase its display rendering.
type Job struct {
	ID             string
	AreaID         string
	Title          string
	Notes          *string
	Schedule       string
	SchedulePhrase string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskStatus enumerates the lifecycle of a cleaning task.
type TaskStatus string

const (
	// TaskStatusPending marks an assigned but uncompleted task.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted marks a task the assignee reported done.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusVerified marks a completed task a supervisor signed off.
	TaskStatusVerified TaskStatus = "verified"
)

// Task represents a concrete cleaning assignment.
type Task struct {
	ID          string
	JobID       string
	AreaID      string
	AssigneeID  string
	Status      TaskStatus
	DueAt       time.Time
	CompletedAt *time.Time
	VerifiedAt  *time.Time
	VerifierID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignTaskParams wraps the data required to assign a task.
type AssignTaskParams struct {
	Principal  Principal
	JobID      string
	AssigneeID string
	DueAt      time.Time
}

// AssignmentWarning flags a non-blocking concern with a task assignment, such
// as the assignee being off shift on the due date.
type AssignmentWarning struct {
	Type       string
	AssigneeID string
	Weekday    time.Weekday
}

// TaskQuery narrows task listings.
type TaskQuery struct {
	Principal  Principal
	AreaID     string
	AssigneeID string
	Status     TaskStatus
	DueAfter   *time.Time
	DueBefore  *time.Time
}

// ComplianceRow summarizes task outcomes for one area within a window.
type ComplianceRow struct {
	AreaID    string
	AreaName  string
	Pending   int
	Completed int
	Verified  int
}

// Total returns the number of tasks counted for the area.
func (r ComplianceRow) Total() int {
	return r.Pending + r.Completed + r.Verified
}

// CompletionRate returns the fraction of tasks completed or verified.
func (r ComplianceRow) CompletionRate() float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(r.Completed+r.Verified) / float64(total)
}

// ComplianceWindow bounds a compliance summary query.
type ComplianceWindow struct {
	From time.Time
	To   time.Time
}

// WeeklyAvailability re-exports the hydrated week shape for service callers.
type WeeklyAvailability = availability.Week
