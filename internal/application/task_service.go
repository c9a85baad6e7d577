package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/cleanops/internal/persistence"
	"github.com/example/cleanops/internal/routing"
)

// WarningTypeOffShift flags an assignment whose due date falls on a weekday
// the assignee has not marked active.
const WarningTypeOffShift = "assignee_off_shift"

// TaskService orchestrates the task lifecycle: assignment by supervisors,
// completion by cleaners and verification sign-off.
type TaskService struct {
	tasks        persistence.TaskRepository
	jobs         persistence.JobRepository
	staff        persistence.StaffRepository
	locations    persistence.LocationRepository
	availability persistence.AvailabilityRepository
	summaries    *summaryCache
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewTaskService wires dependencies for task operations.
func NewTaskService(tasks persistence.TaskRepository, jobs persistence.JobRepository, staff persistence.StaffRepository, locations persistence.LocationRepository, overrides persistence.AvailabilityRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TaskService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks:        tasks,
		jobs:         jobs,
		staff:        staff,
		locations:    locations,
		availability: overrides,
		summaries:    newSummaryCache(0, 0, now),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *TaskService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TaskService", operation, attrs...)
}

// AssignTask creates a pending task from a job template. Supervisors and
// administrators only. A non-blocking warning is returned when the assignee
// is off shift on the due weekday.
func (s *TaskService) AssignTask(ctx context.Context, params AssignTaskParams) (Task, []AssignmentWarning, error) {
	if s == nil || s.tasks == nil || s.jobs == nil {
		return Task{}, nil, fmt.Errorf("task repositories not configured")
	}
	if !params.Principal.CanSupervise() {
		return Task{}, nil, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if params.JobID == "" {
		vErr.add("job_id", "job is required")
	}
	if params.AssigneeID == "" {
		vErr.add("assignee_id", "assignee is required")
	}
	if params.DueAt.IsZero() {
		vErr.add("due_at", "due date is required")
	}
	if vErr.HasErrors() {
		return Task{}, nil, vErr
	}

	job, err := s.jobs.GetJob(ctx, params.JobID)
	if err != nil {
		return Task{}, nil, mapRepoError(err)
	}

	if s.staff != nil {
		assignee, err := s.staff.GetStaff(ctx, params.AssigneeID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				vErr.add("assignee_id", "assignee does not exist")
				return Task{}, nil, vErr
			}
			return Task{}, nil, err
		}
		if assignee.Disabled {
			vErr.add("assignee_id", "assignee account is disabled")
			return Task{}, nil, vErr
		}
	}

	warnings, err := s.offShiftWarnings(ctx, params.AssigneeID, params.DueAt)
	if err != nil {
		return Task{}, nil, err
	}

	now := s.now()
	stored := persistence.Task{
		ID:         s.idGenerator(),
		JobID:      job.ID,
		AreaID:     job.AreaID,
		AssigneeID: params.AssigneeID,
		Status:     string(TaskStatusPending),
		DueAt:      params.DueAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.tasks.CreateTask(ctx, stored); err != nil {
		return Task{}, nil, mapRepoError(err)
	}
	s.summaries.Invalidate()

	s.log(ctx, "AssignTask", "task_id", stored.ID, "job_id", job.ID, "assignee_id", params.AssigneeID).InfoContext(ctx, "task assigned")
	return toTask(stored), warnings, nil
}

// CompleteTask marks a pending task done. Only the assignee may complete it.
func (s *TaskService) CompleteTask(ctx context.Context, principal Principal, taskID string) (Task, error) {
	if s == nil || s.tasks == nil {
		return Task{}, fmt.Errorf("task repository not configured")
	}

	existing, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, mapRepoError(err)
	}

	if existing.AssigneeID != principal.StaffID {
		return Task{}, ErrUnauthorized
	}
	if existing.Status != string(TaskStatusPending) {
		return Task{}, ErrInvalidTransition
	}

	now := s.now()
	updated := existing
	updated.Status = string(TaskStatusCompleted)
	updated.CompletedAt = &now
	updated.UpdatedAt = now

	if err := s.tasks.UpdateTask(ctx, updated); err != nil {
		return Task{}, mapRepoError(err)
	}
	s.summaries.Invalidate()

	s.log(ctx, "CompleteTask", "task_id", taskID).InfoContext(ctx, "task completed")
	return toTask(updated), nil
}

// VerifyTask signs off a completed task. Supervisors and administrators
// only; the assignee cannot verify their own work.
func (s *TaskService) VerifyTask(ctx context.Context, principal Principal, taskID string) (Task, error) {
	if s == nil || s.tasks == nil {
		return Task{}, fmt.Errorf("task repository not configured")
	}
	if !principal.CanSupervise() {
		return Task{}, ErrUnauthorized
	}

	existing, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, mapRepoError(err)
	}

	if existing.AssigneeID == principal.StaffID {
		return Task{}, ErrUnauthorized
	}
	if existing.Status != string(TaskStatusCompleted) {
		return Task{}, ErrInvalidTransition
	}

	now := s.now()
	verifier := principal.StaffID
	updated := existing
	updated.Status = string(TaskStatusVerified)
	updated.VerifiedAt = &now
	updated.VerifierID = &verifier
	updated.UpdatedAt = now

	if err := s.tasks.UpdateTask(ctx, updated); err != nil {
		return Task{}, mapRepoError(err)
	}
	s.summaries.Invalidate()

	s.log(ctx, "VerifyTask", "task_id", taskID, "verifier_id", verifier).InfoContext(ctx, "task verified")
	return toTask(updated), nil
}

// ListTasks enumerates tasks visible to the principal. Cleaners only see
// their own assignments; supervisors and administrators see everything the
// query matches.
func (s *TaskService) ListTasks(ctx context.Context, query TaskQuery) ([]Task, error) {
	if s == nil || s.tasks == nil {
		return nil, fmt.Errorf("task repository not configured")
	}

	filter := persistence.TaskFilter{
		AreaID:     query.AreaID,
		AssigneeID: query.AssigneeID,
		Status:     string(query.Status),
		DueAfter:   query.DueAfter,
		DueBefore:  query.DueBefore,
	}
	if !query.Principal.CanSupervise() {
		filter.AssigneeID = query.Principal.StaffID
	}

	models, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	out := make([]Task, 0, len(models))
	for _, model := range models {
		out = append(out, toTask(model))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DueAt.Equal(out[j].DueAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueAt.Before(out[j].DueAt)
	})
	return out, nil
}

// ComplianceSummary aggregates task outcomes per area within the window.
// Supervisors and administrators only. Results are cached briefly and the
// cache is dropped on every task mutation.
func (s *TaskService) ComplianceSummary(ctx context.Context, principal Principal, window ComplianceWindow) ([]ComplianceRow, error) {
	if s == nil || s.tasks == nil {
		return nil, fmt.Errorf("task repository not configured")
	}
	if !principal.CanSupervise() {
		return nil, ErrUnauthorized
	}

	key := buildSummaryCacheKey(window)
	if rows, ok := s.summaries.Get(key); ok {
		return rows, nil
	}

	filter := persistence.TaskFilter{}
	if !window.From.IsZero() {
		from := window.From
		filter.DueAfter = &from
	}
	if !window.To.IsZero() {
		to := window.To
		filter.DueBefore = &to
	}

	models, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}

	areaNames, err := s.areaNames(ctx)
	if err != nil {
		return nil, err
	}

	byArea := make(map[string]*ComplianceRow)
	for _, model := range models {
		row, ok := byArea[model.AreaID]
		if !ok {
			row = &ComplianceRow{AreaID: model.AreaID, AreaName: areaNames[model.AreaID]}
			byArea[model.AreaID] = row
		}
		switch TaskStatus(model.Status) {
		case TaskStatusCompleted:
			row.Completed++
		case TaskStatusVerified:
			row.Verified++
		case TaskStatusPending:
			fallthrough
		default:
			row.Pending++
		}
	}

	rows := make([]ComplianceRow, 0, len(byArea))
	for _, row := range byArea {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AreaName == rows[j].AreaName {
			return rows[i].AreaID < rows[j].AreaID
		}
		return rows[i].AreaName < rows[j].AreaName
	})

	s.summaries.Store(key, rows)
	return rows, nil
}

func (s *TaskService) offShiftWarnings(ctx context.Context, assigneeID string, dueAt time.Time) ([]AssignmentWarning, error) {
	if s.availability == nil {
		return nil, nil
	}

	rows, err := s.availability.ListAvailability(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	weekday := dueAt.Weekday()
	for _, row := range rows {
		if time.Weekday(row.Weekday) == weekday {
			if row.IsActive {
				return nil, nil
			}
			break
		}
	}

	// No active override covers the due weekday; the default week is
	// inactive, so flag the assignment.
	return []AssignmentWarning{{
		Type:       WarningTypeOffShift,
		AssigneeID: assigneeID,
		Weekday:    weekday,
	}}, nil
}

func (s *TaskService) areaNames(ctx context.Context) (map[string]string, error) {
	if s.locations == nil {
		return map[string]string{}, nil
	}
	areas, err := s.locations.ListAreas(ctx, "")
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	names := make(map[string]string, len(areas))
	for _, area := range areas {
		names[area.ID] = area.Name
	}
	return names, nil
}

func toTask(stored persistence.Task) Task {
	return Task{
		ID:          stored.ID,
		JobID:       stored.JobID,
		AreaID:      stored.AreaID,
		AssigneeID:  stored.AssigneeID,
		Status:      TaskStatus(stored.Status),
		DueAt:       stored.DueAt,
		CompletedAt: stored.CompletedAt,
		VerifiedAt:  stored.VerifiedAt,
		VerifierID:  stored.VerifierID,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}
}

// principalCanActOn reports whether the principal may read the task.
func principalCanActOn(principal Principal, task Task) bool {
	if principal.CanSupervise() {
		return true
	}
	return principal.Role == routing.RoleCleaner && task.AssigneeID == principal.StaffID
}

// GetTask returns one task, restricted to the assignee for cleaners.
func (s *TaskService) GetTask(ctx context.Context, principal Principal, taskID string) (Task, error) {
	if s == nil || s.tasks == nil {
		return Task{}, fmt.Errorf("task repository not configured")
	}

	stored, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, mapRepoError(err)
	}

	task := toTask(stored)
	if !principalCanActOn(principal, task) {
		return Task{}, ErrUnauthorized
	}
	return task, nil
}
