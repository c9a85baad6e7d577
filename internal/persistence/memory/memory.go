// Package memory provides an in-memory persistence layer implementing the
// same repository interfaces as the SQLite package. It backs tests and local
// experimentation where a database file is unwanted.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/cleanops/internal/persistence"
)

// Storage holds every repository's state behind one lock.
type Storage struct {
	mu           sync.RWMutex
	staff        map[string]persistence.Staff
	sessions     map[string]persistence.Session
	sites        map[string]persistence.Site
	zones        map[string]persistence.Zone
	areas        map[string]persistence.Area
	jobs         map[string]persistence.Job
	tasks        map[string]persistence.Task
	availability map[string][]persistence.AvailabilityOverride
}

// Open returns a new empty Storage.
func Open() *Storage {
	return &Storage{
		staff:        make(map[string]persistence.Staff),
		sessions:     make(map[string]persistence.Session),
		sites:        make(map[string]persistence.Site),
		zones:        make(map[string]persistence.Zone),
		areas:        make(map[string]persistence.Area),
		jobs:         make(map[string]persistence.Job),
		tasks:        make(map[string]persistence.Task),
		availability: make(map[string][]persistence.AvailabilityOverride),
	}
}

// Close releases resources. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// --- StaffRepository implementation ---

// CreateStaff stores a new staff account.
func (s *Storage) CreateStaff(ctx context.Context, staff persistence.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[staff.ID]; ok {
		return persistence.ErrDuplicate
	}
	if err := s.ensureUniqueEmailLocked(staff.ID, staff.Email); err != nil {
		return err
	}

	staff.Email = normalizeEmail(staff.Email)
	s.staff[staff.ID] = staff
	return nil
}

// UpdateStaff updates an existing staff account.
func (s *Storage) UpdateStaff(ctx context.Context, staff persistence.Staff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[staff.ID]; !ok {
		return persistence.ErrNotFound
	}
	if err := s.ensureUniqueEmailLocked(staff.ID, staff.Email); err != nil {
		return err
	}

	staff.Email = normalizeEmail(staff.Email)
	s.staff[staff.ID] = staff
	return nil
}

// GetStaff retrieves a staff account by ID.
func (s *Storage) GetStaff(ctx context.Context, id string) (persistence.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, ok := s.staff[id]
	if !ok {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	return staff, nil
}

// GetStaffByEmail retrieves a staff account by email address.
func (s *Storage) GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	normalized := normalizeEmail(email)
	for _, staff := range s.staff {
		if staff.Email == normalized {
			return staff, nil
		}
	}
	return persistence.Staff{}, persistence.ErrNotFound
}

// ListStaff returns all staff accounts ordered by CreatedAt then ID.
func (s *Storage) ListStaff(ctx context.Context) ([]persistence.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Staff, 0, len(s.staff))
	for _, staff := range s.staff {
		out = append(out, staff)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteStaff removes a staff account. Accounts referenced by tasks cannot be
// removed, matching the SQLite foreign key behavior.
func (s *Storage) DeleteStaff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, task := range s.tasks {
		if task.AssigneeID == id {
			return persistence.ErrForeignKeyViolation
		}
		if task.VerifierID != nil && *task.VerifierID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.staff, id)
	delete(s.availability, id)
	for token, session := range s.sessions {
		if session.StaffID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *Storage) ensureUniqueEmailLocked(id, email string) error {
	normalized := normalizeEmail(email)
	for otherID, other := range s.staff {
		if otherID == id {
			continue
		}
		if other.Email == normalized {
			return persistence.ErrDuplicate
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- SessionRepository implementation ---

// CreateSession stores a new session keyed by token.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	if _, ok := s.staff[session.StaffID]; !ok {
		return persistence.Session{}, persistence.ErrForeignKeyViolation
	}

	s.sessions[session.Token] = session
	return session, nil
}

// GetSession retrieves a session by token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

// RevokeSession marks a session revoked and returns the updated row.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	session.UpdatedAt = revokedAt
	s.sessions[token] = session
	return session, nil
}

// DeleteExpiredSessions removes sessions expired before the reference time.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(s.sessions, token)
		}
	}
	return nil
}

// --- LocationRepository implementation ---

// CreateSite stores a new site.
func (s *Storage) CreateSite(ctx context.Context, site persistence.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[site.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.sites[site.ID] = site
	return nil
}

// UpdateSite updates an existing site.
func (s *Storage) UpdateSite(ctx context.Context, site persistence.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[site.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.sites[site.ID] = site
	return nil
}

// GetSite retrieves a site by ID.
func (s *Storage) GetSite(ctx context.Context, id string) (persistence.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[id]
	if !ok {
		return persistence.Site{}, persistence.ErrNotFound
	}
	return site, nil
}

// ListSites returns all sites ordered by name then ID.
func (s *Storage) ListSites(ctx context.Context) ([]persistence.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Site, 0, len(s.sites))
	for _, site := range s.sites {
		out = append(out, site)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// DeleteSite removes a site and cascades to its zones and areas.
func (s *Storage) DeleteSite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sites[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.sites, id)
	for zoneID, zone := range s.zones {
		if zone.SiteID == id {
			s.deleteZoneLocked(zoneID)
		}
	}
	return nil
}

// CreateZone stores a new zone.
func (s *Storage) CreateZone(ctx context.Context, zone persistence.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.zones[zone.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.sites[zone.SiteID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.zones[zone.ID] = zone
	return nil
}

// GetZone retrieves a zone by ID.
func (s *Storage) GetZone(ctx context.Context, id string) (persistence.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	zone, ok := s.zones[id]
	if !ok {
		return persistence.Zone{}, persistence.ErrNotFound
	}
	return zone, nil
}

// ListZones returns zones, optionally scoped to one site, ordered by name.
func (s *Storage) ListZones(ctx context.Context, siteID string) ([]persistence.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Zone, 0, len(s.zones))
	for _, zone := range s.zones {
		if siteID != "" && zone.SiteID != siteID {
			continue
		}
		out = append(out, zone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// DeleteZone removes a zone and cascades to its areas.
func (s *Storage) DeleteZone(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.zones[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteZoneLocked(id)
	return nil
}

func (s *Storage) deleteZoneLocked(id string) {
	delete(s.zones, id)
	for areaID, area := range s.areas {
		if area.ZoneID == id {
			s.deleteAreaLocked(areaID)
		}
	}
}

// CreateArea stores a new area.
func (s *Storage) CreateArea(ctx context.Context, area persistence.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[area.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.zones[area.ZoneID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.areas[area.ID] = area
	return nil
}

// UpdateArea updates an existing area.
func (s *Storage) UpdateArea(ctx context.Context, area persistence.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[area.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.areas[area.ID] = area
	return nil
}

// GetArea retrieves an area by ID.
func (s *Storage) GetArea(ctx context.Context, id string) (persistence.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	area, ok := s.areas[id]
	if !ok {
		return persistence.Area{}, persistence.ErrNotFound
	}
	return area, nil
}

// ListAreas returns areas, optionally scoped to one zone, ordered by name.
func (s *Storage) ListAreas(ctx context.Context, zoneID string) ([]persistence.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Area, 0, len(s.areas))
	for _, area := range s.areas {
		if zoneID != "" && area.ZoneID != zoneID {
			continue
		}
		out = append(out, area)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// DeleteArea removes an area and cascades to its jobs and tasks.
func (s *Storage) DeleteArea(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.areas[id]; !ok {
		return persistence.ErrNotFound
	}
	s.deleteAreaLocked(id)
	return nil
}

func (s *Storage) deleteAreaLocked(id string) {
	delete(s.areas, id)
	for jobID, job := range s.jobs {
		if job.AreaID == id {
			delete(s.jobs, jobID)
		}
	}
	for taskID, task := range s.tasks {
		if task.AreaID == id {
			delete(s.tasks, taskID)
		}
	}
}

// --- JobRepository implementation ---

// CreateJob stores a new job template.
func (s *Storage) CreateJob(ctx context.Context, job persistence.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.areas[job.AreaID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.jobs[job.ID] = job
	return nil
}

// UpdateJob updates an existing job template.
func (s *Storage) UpdateJob(ctx context.Context, job persistence.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.jobs[job.ID] = job
	return nil
}

// GetJob retrieves a job template by ID.
func (s *Storage) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return persistence.Job{}, persistence.ErrNotFound
	}
	return job, nil
}

// ListJobs returns job templates, optionally scoped to one area, ordered by
// title then ID.
func (s *Storage) ListJobs(ctx context.Context, areaID string) ([]persistence.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if areaID != "" && job.AreaID != areaID {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title == out[j].Title {
			return out[i].ID < out[j].ID
		}
		return out[i].Title < out[j].Title
	})
	return out, nil
}

// DeleteJob removes a job template and its tasks.
func (s *Storage) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.jobs, id)
	for taskID, task := range s.tasks {
		if task.JobID == id {
			delete(s.tasks, taskID)
		}
	}
	return nil
}

// --- TaskRepository implementation ---

// CreateTask stores a new task.
func (s *Storage) CreateTask(ctx context.Context, task persistence.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.jobs[task.JobID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if _, ok := s.staff[task.AssigneeID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.tasks[task.ID] = task
	return nil
}

// UpdateTask updates an existing task.
func (s *Storage) UpdateTask(ctx context.Context, task persistence.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.tasks[task.ID] = task
	return nil
}

// GetTask retrieves a task by ID.
func (s *Storage) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return persistence.Task{}, persistence.ErrNotFound
	}
	return task, nil
}

// ListTasks returns tasks matching the filter ordered by due time then ID.
func (s *Storage) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if filter.AreaID != "" && task.AreaID != filter.AreaID {
			continue
		}
		if filter.AssigneeID != "" && task.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.DueAfter != nil && task.DueAt.Before(*filter.DueAfter) {
			continue
		}
		if filter.DueBefore != nil && task.DueAt.After(*filter.DueBefore) {
			continue
		}
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out, nil
}

// DeleteTask removes a task by ID.
func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// --- AvailabilityRepository implementation ---

// ListAvailability returns the override rows for a staff member ordered by
// weekday.
func (s *Storage) ListAvailability(ctx context.Context, staffID string) ([]persistence.AvailabilityOverride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.availability[staffID]
	out := make([]persistence.AvailabilityOverride, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Weekday < out[j].Weekday
	})
	return out, nil
}

// ReplaceAvailability upserts the row set for a staff member keyed by
// weekday.
func (s *Storage) ReplaceAvailability(ctx context.Context, staffID string, rows []persistence.AvailabilityOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.staff[staffID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	byWeekday := make(map[int]persistence.AvailabilityOverride, len(s.availability[staffID])+len(rows))
	for _, row := range s.availability[staffID] {
		byWeekday[row.Weekday] = row
	}
	for _, row := range rows {
		row.StaffID = staffID
		byWeekday[row.Weekday] = row
	}

	replaced := make([]persistence.AvailabilityOverride, 0, len(byWeekday))
	for _, row := range byWeekday {
		replaced = append(replaced, row)
	}
	sort.Slice(replaced, func(i, j int) bool {
		return replaced[i].Weekday < replaced[j].Weekday
	})
	s.availability[staffID] = replaced
	return nil
}
