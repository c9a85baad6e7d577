package persistence

import "time"

// Staff represents a workforce account stored in persistence.
type Staff struct {
	ID           string
	Email        string
	DisplayName  string
	Role         string
	PasswordHash string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents an authentication session persisted for a staff member.
type Session struct {
	ID        string
	StaffID   string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// Site is the top of the physical location hierarchy.
type Site struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Zone groups areas within a site.
type Zone struct {
	ID        string
	SiteID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
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

// Job is a cleaning job template bound to an area. Schedule holds the
// five-field recurrence expression produced by the recurrence package.
type Job struct {
	ID        string
	AreaID    string
	Title     string
	Notes     *string
	Schedule  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task is a concrete cleaning assignment generated from a job.
type Task struct {
	ID          string
	JobID       string
	AreaID      string
	AssigneeID  string
	Status      string
	DueAt       time.Time
	CompletedAt *time.Time
	VerifiedAt  *time.Time
	VerifierID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AvailabilityOverride is the sparse per-staff-member, per-weekday working
// hours record. Times are null for inactive days.
type AvailabilityOverride struct {
	StaffID   string
	Weekday   int
	StartTime *string
	EndTime   *string
	IsActive  bool
	UpdatedAt time.Time
}
