package sqlite

import (
	"context"
	"fmt"

	"github.com/example/cleanops/internal/persistence"
)

// TaskRepository implements persistence.TaskRepository using SQLite.
type TaskRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(pool *ConnectionPool) *TaskRepository {
	return &TaskRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const taskColumns = "id, job_id, area_id, assignee_id, status, due_at, completed_at, verified_at, verifier_id, created_at, updated_at"

// CreateTask inserts a new task.
func (r *TaskRepository) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		task.ID,
		task.JobID,
		task.AreaID,
		task.AssigneeID,
		task.Status,
		formatTime(task.DueAt),
		formatNullableTime(task.CompletedAt),
		formatNullableTime(task.VerifiedAt),
		task.VerifierID,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateTask updates an existing task.
func (r *TaskRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	query := `
		UPDATE tasks
		SET assignee_id = ?, status = ?, due_at = ?, completed_at = ?, verified_at = ?, verifier_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		task.AssigneeID,
		task.Status,
		formatTime(task.DueAt),
		formatNullableTime(task.CompletedAt),
		formatNullableTime(task.VerifiedAt),
		task.VerifierID,
		formatTime(task.UpdatedAt),
		task.ID,
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

// GetTask retrieves a task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if id == "" {
		return persistence.Task{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	return r.scanTask(row)
}

// ListTasks returns tasks matching the filter ordered by due time then ID.
// RFC3339 text sorts chronologically, so the due bounds compare the raw
// column.
func (r *TaskRepository) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var conditions []string
	var args []any

	if filter.AreaID != "" {
		conditions = append(conditions, "area_id = ?")
		args = append(args, filter.AreaID)
	}
	if filter.AssigneeID != "" {
		conditions = append(conditions, "assignee_id = ?")
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.DueAfter != nil {
		conditions = append(conditions, "due_at >= ?")
		args = append(args, formatTime(*filter.DueAfter))
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_at <= ?")
		args = append(args, formatTime(*filter.DueBefore))
	}

	for i, condition := range conditions {
		if i == 0 {
			query += " WHERE " + condition
		} else {
			query += " AND " + condition
		}
	}
	query += " ORDER BY due_at ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.Task
	for rows.Next() {
		task, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// DeleteTask removes a task by ID.
func (r *TaskRepository) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM tasks WHERE id = ?", id)
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

func (r *TaskRepository) scanTask(row rowScanner) (persistence.Task, error) {
	var task persistence.Task
	var dueAt, createdAt, updatedAt string
	var completedAt, verifiedAt *string

	err := row.Scan(
		&task.ID,
		&task.JobID,
		&task.AreaID,
		&task.AssigneeID,
		&task.Status,
		&dueAt,
		&completedAt,
		&verifiedAt,
		&task.VerifierID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Task{}, r.mapper.MapError(err)
	}

	if task.DueAt, err = parseTime("due_at", dueAt); err != nil {
		return persistence.Task{}, err
	}
	if task.CompletedAt, err = parseNullableTime("completed_at", completedAt); err != nil {
		return persistence.Task{}, err
	}
	if task.VerifiedAt, err = parseNullableTime("verified_at", verifiedAt); err != nil {
		return persistence.Task{}, err
	}
	if task.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Task{}, err
	}
	if task.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Task{}, err
	}
	return task, nil
}
