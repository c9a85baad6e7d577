package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cleanops/internal/persistence"
)

type taskRepoStub struct {
	tasks map[string]persistence.Task

	created   []persistence.Task
	updated   []persistence.Task
	listCalls int
	listErr   error
}

func newTaskRepoStub(tasks ...persistence.Task) *taskRepoStub {
	stub := &taskRepoStub{tasks: make(map[string]persistence.Task)}
	for _, task := range tasks {
		stub.tasks[task.ID] = task
	}
	return stub
}

func (r *taskRepoStub) CreateTask(ctx context.Context, task persistence.Task) error {
	r.created = append(r.created, task)
	r.tasks[task.ID] = task
	return nil
}

func (r *taskRepoStub) UpdateTask(ctx context.Context, task persistence.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.updated = append(r.updated, task)
	r.tasks[task.ID] = task
	return nil
}

func (r *taskRepoStub) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return persistence.Task{}, persistence.ErrNotFound
	}
	return task, nil
}

func (r *taskRepoStub) ListTasks(ctx context.Context, filter persistence.TaskFilter) ([]persistence.Task, error) {
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
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
	return out, nil
}

func (r *taskRepoStub) DeleteTask(ctx context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

type taskServiceFixture struct {
	tasks        *taskRepoStub
	jobs         *jobRepoStub
	staff        *staffRepoStub
	locations    *locationRepoStub
	availability *availabilityRepoStub
	service      *TaskService
}

func newTaskServiceFixture(reference time.Time, tasks ...persistence.Task) *taskServiceFixture {
	f := &taskServiceFixture{
		tasks:        newTaskRepoStub(tasks...),
		jobs:         newJobRepoStub(persistence.Job{ID: "job-1", AreaID: "area-1", Title: "Mop lobby", Schedule: "00 06 * * *"}),
		staff:        newStaffRepoStub(persistence.Staff{ID: "cleaner-1", Email: "c@example.com", Role: "cleaner"}),
		locations:    locationsWithArea("area-1"),
		availability: newAvailabilityRepoStub(),
	}
	f.service = NewTaskService(f.tasks, f.jobs, f.staff, f.locations, f.availability, sequenceIDs("task"), testClock(reference), nil)
	return f
}

func activeDay(weekday time.Weekday) persistence.AvailabilityOverride {
	start := "08:00"
	end := "16:00"
	return persistence.AvailabilityOverride{
		StaffID:   "cleaner-1",
		Weekday:   int(weekday),
		StartTime: &start,
		EndTime:   &end,
		IsActive:  true,
	}
}

func TestTaskService_AssignTask(t *testing.T) {
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	// 2025-04-09 is a Wednesday.
	dueAt := time.Date(2025, time.April, 9, 12, 0, 0, 0, time.UTC)

	t.Run("creates a pending task from the job template", func(t *testing.T) {
		f := newTaskServiceFixture(reference)
		f.availability.rows["cleaner-1"] = []persistence.AvailabilityOverride{activeDay(time.Wednesday)}

		task, warnings, err := f.service.AssignTask(context.Background(), AssignTaskParams{
			Principal:  supervisorPrincipal,
			JobID:      "job-1",
			AssigneeID: "cleaner-1",
			DueAt:      dueAt,
		})
		if err != nil {
			t.Fatalf("AssignTask returned error: %v", err)
		}

		if task.Status != TaskStatusPending {
			t.Errorf("status = %q", task.Status)
		}
		if task.AreaID != "area-1" {
			t.Errorf("area = %q, want inherited from job", task.AreaID)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v, want none", warnings)
		}
		if len(f.tasks.created) != 1 {
			t.Fatalf("created tasks = %d, want 1", len(f.tasks.created))
		}
	})

	t.Run("warns when the assignee is off shift on the due weekday", func(t *testing.T) {
		f := newTaskServiceFixture(reference)
		f.availability.rows["cleaner-1"] = []persistence.AvailabilityOverride{activeDay(time.Monday)}

		_, warnings, err := f.service.AssignTask(context.Background(), AssignTaskParams{
			Principal:  supervisorPrincipal,
			JobID:      "job-1",
			AssigneeID: "cleaner-1",
			DueAt:      dueAt,
		})
		if err != nil {
			t.Fatalf("AssignTask returned error: %v", err)
		}

		if len(warnings) != 1 {
			t.Fatalf("warnings = %v, want exactly one", warnings)
		}
		if warnings[0].Type != WarningTypeOffShift || warnings[0].Weekday != time.Wednesday {
			t.Errorf("warning = %+v", warnings[0])
		}
	})

	t.Run("rejects cleaners", func(t *testing.T) {
		f := newTaskServiceFixture(reference)

		_, _, err := f.service.AssignTask(context.Background(), AssignTaskParams{
			Principal:  cleanerPrincipal,
			JobID:      "job-1",
			AssigneeID: "cleaner-1",
			DueAt:      dueAt,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects an unknown assignee with a field error", func(t *testing.T) {
		f := newTaskServiceFixture(reference)

		_, _, err := f.service.AssignTask(context.Background(), AssignTaskParams{
			Principal:  supervisorPrincipal,
			JobID:      "job-1",
			AssigneeID: "ghost",
			DueAt:      dueAt,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["assignee_id"]; !ok {
			t.Errorf("field errors = %v", vErr.FieldErrors)
		}
	})
}

func TestTaskService_CompleteTask(t *testing.T) {
	reference := time.Date(2025, time.April, 9, 15, 0, 0, 0, time.UTC)
	pending := persistence.Task{
		ID:         "task-1",
		JobID:      "job-1",
		AreaID:     "area-1",
		AssigneeID: "cleaner-1",
		Status:     string(TaskStatusPending),
		DueAt:      reference,
	}

	t.Run("assignee completes a pending task", func(t *testing.T) {
		f := newTaskServiceFixture(reference, pending)

		completed, err := f.service.CompleteTask(context.Background(), cleanerPrincipal, "task-1")
		if err != nil {
			t.Fatalf("CompleteTask returned error: %v", err)
		}
		if completed.Status != TaskStatusCompleted {
			t.Errorf("status = %q", completed.Status)
		}
		if completed.CompletedAt == nil || !completed.CompletedAt.Equal(reference) {
			t.Errorf("completed at = %v", completed.CompletedAt)
		}
	})

	t.Run("rejects anyone other than the assignee", func(t *testing.T) {
		f := newTaskServiceFixture(reference, pending)

		_, err := f.service.CompleteTask(context.Background(), supervisorPrincipal, "task-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects completing a non-pending task", func(t *testing.T) {
		done := pending
		done.Status = string(TaskStatusCompleted)
		f := newTaskServiceFixture(reference, done)

		_, err := f.service.CompleteTask(context.Background(), cleanerPrincipal, "task-1")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestTaskService_VerifyTask(t *testing.T) {
	reference := time.Date(2025, time.April, 9, 17, 0, 0, 0, time.UTC)
	completed := persistence.Task{
		ID:         "task-1",
		JobID:      "job-1",
		AreaID:     "area-1",
		AssigneeID: "cleaner-1",
		Status:     string(TaskStatusCompleted),
		DueAt:      reference,
	}

	t.Run("supervisor verifies a completed task", func(t *testing.T) {
		f := newTaskServiceFixture(reference, completed)

		verified, err := f.service.VerifyTask(context.Background(), supervisorPrincipal, "task-1")
		if err != nil {
			t.Fatalf("VerifyTask returned error: %v", err)
		}
		if verified.Status != TaskStatusVerified {
			t.Errorf("status = %q", verified.Status)
		}
		if verified.VerifierID == nil || *verified.VerifierID != supervisorPrincipal.StaffID {
			t.Errorf("verifier = %v", verified.VerifierID)
		}
	})

	t.Run("assignee cannot verify their own work", func(t *testing.T) {
		own := completed
		own.AssigneeID = supervisorPrincipal.StaffID
		f := newTaskServiceFixture(reference, own)

		_, err := f.service.VerifyTask(context.Background(), supervisorPrincipal, "task-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects verifying a pending task", func(t *testing.T) {
		pending := completed
		pending.Status = string(TaskStatusPending)
		f := newTaskServiceFixture(reference, pending)

		_, err := f.service.VerifyTask(context.Background(), supervisorPrincipal, "task-1")
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	reference := time.Date(2025, time.April, 9, 9, 0, 0, 0, time.UTC)
	tasks := []persistence.Task{
		{ID: "task-b", AreaID: "area-1", AssigneeID: "cleaner-1", Status: string(TaskStatusPending), DueAt: reference.Add(2 * time.Hour)},
		{ID: "task-a", AreaID: "area-1", AssigneeID: "cleaner-1", Status: string(TaskStatusPending), DueAt: reference.Add(2 * time.Hour)},
		{ID: "task-c", AreaID: "area-1", AssigneeID: "other", Status: string(TaskStatusPending), DueAt: reference.Add(time.Hour)},
	}

	t.Run("cleaners only see their own assignments", func(t *testing.T) {
		f := newTaskServiceFixture(reference, tasks...)

		listed, err := f.service.ListTasks(context.Background(), TaskQuery{Principal: cleanerPrincipal})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("listed = %d, want 2", len(listed))
		}
		for _, task := range listed {
			if task.AssigneeID != "cleaner-1" {
				t.Errorf("leaked task %q assigned to %q", task.ID, task.AssigneeID)
			}
		}
	})

	t.Run("results are ordered by due time then id", func(t *testing.T) {
		f := newTaskServiceFixture(reference, tasks...)

		listed, err := f.service.ListTasks(context.Background(), TaskQuery{Principal: supervisorPrincipal})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 3 {
			t.Fatalf("listed = %d, want 3", len(listed))
		}
		want := []string{"task-c", "task-a", "task-b"}
		for i, id := range want {
			if listed[i].ID != id {
				t.Errorf("position %d = %q, want %q", i, listed[i].ID, id)
			}
		}
	})
}

func TestTaskService_ComplianceSummary(t *testing.T) {
	reference := time.Date(2025, time.April, 9, 9, 0, 0, 0, time.UTC)
	window := ComplianceWindow{From: reference.Add(-24 * time.Hour), To: reference.Add(24 * time.Hour)}
	tasks := []persistence.Task{
		{ID: "task-1", AreaID: "area-1", AssigneeID: "cleaner-1", Status: string(TaskStatusPending), DueAt: reference},
		{ID: "task-2", AreaID: "area-1", AssigneeID: "cleaner-1", Status: string(TaskStatusCompleted), DueAt: reference},
		{ID: "task-3", AreaID: "area-1", AssigneeID: "cleaner-1", Status: string(TaskStatusVerified), DueAt: reference},
		{ID: "task-4", AreaID: "area-2", AssigneeID: "cleaner-1", Status: string(TaskStatusVerified), DueAt: reference},
	}

	t.Run("aggregates counts per area", func(t *testing.T) {
		f := newTaskServiceFixture(reference, tasks...)

		rows, err := f.service.ComplianceSummary(context.Background(), supervisorPrincipal, window)
		if err != nil {
			t.Fatalf("ComplianceSummary returned error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(rows))
		}

		byArea := make(map[string]ComplianceRow, len(rows))
		for _, row := range rows {
			byArea[row.AreaID] = row
		}
		area1 := byArea["area-1"]
		if area1.Pending != 1 || area1.Completed != 1 || area1.Verified != 1 {
			t.Errorf("area-1 = %+v", area1)
		}
		if area1.AreaName != "Lobby" {
			t.Errorf("area-1 name = %q", area1.AreaName)
		}
		if rate := area1.CompletionRate(); rate < 0.66 || rate > 0.67 {
			t.Errorf("area-1 completion rate = %v", rate)
		}
	})

	t.Run("serves repeated queries from the cache until a mutation", func(t *testing.T) {
		f := newTaskServiceFixture(reference, tasks...)

		if _, err := f.service.ComplianceSummary(context.Background(), supervisorPrincipal, window); err != nil {
			t.Fatalf("ComplianceSummary returned error: %v", err)
		}
		if _, err := f.service.ComplianceSummary(context.Background(), supervisorPrincipal, window); err != nil {
			t.Fatalf("ComplianceSummary returned error: %v", err)
		}
		if f.tasks.listCalls != 1 {
			t.Fatalf("repository queried %d times, want 1", f.tasks.listCalls)
		}

		if _, err := f.service.CompleteTask(context.Background(), cleanerPrincipal, "task-1"); err != nil {
			t.Fatalf("CompleteTask returned error: %v", err)
		}
		if _, err := f.service.ComplianceSummary(context.Background(), supervisorPrincipal, window); err != nil {
			t.Fatalf("ComplianceSummary returned error: %v", err)
		}
		if f.tasks.listCalls != 2 {
			t.Fatalf("repository queried %d times after mutation, want 2", f.tasks.listCalls)
		}
	})

	t.Run("rejects cleaners", func(t *testing.T) {
		f := newTaskServiceFixture(reference)

		_, err := f.service.ComplianceSummary(context.Background(), cleanerPrincipal, window)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}
