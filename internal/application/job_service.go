package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/cleanops/internal/persistence"
	"github.com/example/cleanops/internal/recurrence"
)

// JobService manages cleaning job templates and their recurrence schedules.
type JobService struct {
	jobs        persistence.JobRepository
	locations   persistence.LocationRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewJobService wires dependencies for job template operations.
func NewJobService(jobs persistence.JobRepository, locations persistence.LocationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *JobService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &JobService{
		jobs:        jobs,
		locations:   locations,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *JobService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "JobService", operation, attrs...)
}

// CreateJob validates the template, encodes its recurrence descriptor into
// the stored expression and persists the job. Supervisors and administrators
// only.
func (s *JobService) CreateJob(ctx context.Context, principal Principal, input JobInput) (Job, error) {
	if s == nil || s.jobs == nil {
		return Job{}, fmt.Errorf("job repository not configured")
	}
	if !principal.CanSupervise() {
		return Job{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.AreaID) == "" {
		vErr.add("area_id", "area is required")
	}
	if vErr.HasErrors() {
		return Job{}, vErr
	}

	expression, err := recurrence.Encode(input.Recurrence)
	if err != nil {
		return Job{}, mapRecurrenceError(err)
	}

	if s.locations != nil {
		if _, err := s.locations.GetArea(ctx, input.AreaID); err != nil {
			return Job{}, mapRepoError(err)
		}
	}

	now := s.now()
	stored := persistence.Job{
		ID:        s.idGenerator(),
		AreaID:    input.AreaID,
		Title:     strings.TrimSpace(input.Title),
		Notes:     input.Notes,
		Schedule:  expression,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.CreateJob(ctx, stored); err != nil {
		return Job{}, mapRepoError(err)
	}

	s.log(ctx, "CreateJob", "job_id", stored.ID, "area_id", stored.AreaID, "schedule", expression).InfoContext(ctx, "job created")
	return toJob(stored), nil
}

// UpdateJob replaces the template's attributes and recurrence. The stored
// expression is immutable except by full replacement, so the whole descriptor
// is re-encoded. Supervisors and administrators only.
func (s *JobService) UpdateJob(ctx context.Context, principal Principal, jobID string, input JobInput) (Job, error) {
	if s == nil || s.jobs == nil {
		return Job{}, fmt.Errorf("job repository not configured")
	}
	if !principal.CanSupervise() {
		return Job{}, ErrUnauthorized
	}

	existing, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return Job{}, mapRepoError(err)
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if vErr.HasErrors() {
		return Job{}, vErr
	}

	expression, err := recurrence.Encode(input.Recurrence)
	if err != nil {
		return Job{}, mapRecurrenceError(err)
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Notes = input.Notes
	updated.Schedule = expression
	updated.UpdatedAt = s.now()

	if err := s.jobs.UpdateJob(ctx, updated); err != nil {
		return Job{}, mapRepoError(err)
	}

	s.log(ctx, "UpdateJob", "job_id", jobID, "schedule", expression).InfoContext(ctx, "job updated")
	return toJob(updated), nil
}

// GetJob returns one template with its display phrase.
func (s *JobService) GetJob(ctx context.Context, jobID string) (Job, error) {
	if s == nil || s.jobs == nil {
		return Job{}, fmt.Errorf("job repository not configured")
	}
	stored, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return Job{}, mapRepoError(err)
	}
	return toJob(stored), nil
}

// ListJobs enumerates templates, optionally scoped to one area. Each entry
// carries the rendered schedule phrase; malformed stored expressions render
// as the invalid-schedule sentinel instead of failing the listing.
func (s *JobService) ListJobs(ctx context.Context, principal Principal, areaID string) ([]Job, error) {
	if s == nil || s.jobs == nil {
		return nil, fmt.Errorf("job repository not configured")
	}

	models, err := s.jobs.ListJobs(ctx, areaID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	out := make([]Job, 0, len(models))
	for _, model := range models {
		out = append(out, toJob(model))
	}
	return out, nil
}

// DeleteJob removes a template. Supervisors and administrators only.
func (s *JobService) DeleteJob(ctx context.Context, principal Principal, jobID string) error {
	if s == nil || s.jobs == nil {
		return fmt.Errorf("job repository not configured")
	}
	if !principal.CanSupervise() {
		return ErrUnauthorized
	}
	if err := s.jobs.DeleteJob(ctx, jobID); err != nil {
		return mapRepoError(err)
	}
	s.log(ctx, "DeleteJob", "job_id", jobID).InfoContext(ctx, "job deleted")
	return nil
}

func toJob(stored persistence.Job) Job {
	return Job{
		ID:             stored.ID,
		AreaID:         stored.AreaID,
		Title:          stored.Title,
		Notes:          stored.Notes,
		Schedule:       stored.Schedule,
		SchedulePhrase: recurrence.Describe(stored.Schedule),
		CreatedAt:      stored.CreatedAt,
		UpdatedAt:      stored.UpdatedAt,
	}
}
