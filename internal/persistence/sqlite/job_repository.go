package sqlite

import (
	"context"
	"fmt"

	"github.com/example/cleanops/internal/persistence"
)

// JobRepository implements persistence.JobRepository using SQLite.
type JobRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewJobRepository creates a new SQLite job repository.
func NewJobRepository(pool *ConnectionPool) *JobRepository {
	return &JobRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const jobColumns = "id, area_id, title, notes, schedule, created_at, updated_at"

// CreateJob inserts a new job template.
func (r *JobRepository) CreateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" || job.Schedule == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		job.ID,
		job.AreaID,
		job.Title,
		job.Notes,
		job.Schedule,
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateJob updates an existing job template.
func (r *JobRepository) UpdateJob(ctx context.Context, job persistence.Job) error {
	if job.Schedule == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE jobs
		SET title = ?, notes = ?, schedule = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		job.Title,
		job.Notes,
		job.Schedule,
		formatTime(job.UpdatedAt),
		job.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetJob retrieves a job template by ID.
func (r *JobRepository) GetJob(ctx context.Context, id string) (persistence.Job, error) {
	if id == "" {
		return persistence.Job{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	return r.scanJob(row)
}

// ListJobs returns job templates, optionally scoped to one area, ordered by
// title then ID.
func (r *JobRepository) ListJobs(ctx context.Context, areaID string) ([]persistence.Job, error) {
	query := "SELECT " + jobColumns + " FROM jobs"
	args := []any{}
	if areaID != "" {
		query += " WHERE area_id = ?"
		args = append(args, areaID)
	}
	query += " ORDER BY title ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.Job
	for rows.Next() {
		job, err := r.scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// DeleteJob removes a job template and its tasks.
func (r *JobRepository) DeleteJob(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *JobRepository) scanJob(row rowScanner) (persistence.Job, error) {
	var job persistence.Job
	var createdAt, updatedAt string

	err := row.Scan(
		&job.ID,
		&job.AreaID,
		&job.Title,
		&job.Notes,
		&job.Schedule,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Job{}, r.mapper.MapError(err)
	}

	if job.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Job{}, err
	}
	if job.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Job{}, err
	}
	return job, nil
}
