package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cleanops/internal/persistence"
)

func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()
	pool, err := Open(context.Background(), "file:"+t.TempDir()+"/cleanops_test.db")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return pool
}

func seedStaff(t *testing.T, pool *ConnectionPool, id, email, role string) persistence.Staff {
	t.Helper()
	now := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	staff := persistence.Staff{
		ID:           id,
		Email:        email,
		DisplayName:  "Member " + id,
		Role:         role,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewStaffRepository(pool).CreateStaff(context.Background(), staff); err != nil {
		t.Fatalf("CreateStaff returned error: %v", err)
	}
	return staff
}

func seedArea(t *testing.T, pool *ConnectionPool, areaID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	repo := NewLocationRepository(pool)
	if err := repo.CreateSite(ctx, persistence.Site{ID: "site-1", Name: "HQ", CreatedAt: now, UpdatedAt: now}); err != nil && !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("CreateSite returned error: %v", err)
	}
	if err := repo.CreateZone(ctx, persistence.Zone{ID: "zone-1", SiteID: "site-1", Name: "Floor 1", CreatedAt: now, UpdatedAt: now}); err != nil && !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("CreateZone returned error: %v", err)
	}
	if err := repo.CreateArea(ctx, persistence.Area{ID: areaID, ZoneID: "zone-1", Name: "Lobby", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("CreateArea returned error: %v", err)
	}
}

func TestStaffRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips an account", func(t *testing.T) {
		pool := newTestPool(t)
		created := seedStaff(t, pool, "staff-1", "one@example.com", "cleaner")

		got, err := NewStaffRepository(pool).GetStaff(ctx, "staff-1")
		if err != nil {
			t.Fatalf("GetStaff returned error: %v", err)
		}
		if got.Email != created.Email || got.Role != created.Role {
			t.Errorf("got %+v", got)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("created at = %v, want %v", got.CreatedAt, created.CreatedAt)
		}
	})

	t.Run("normalizes email lookups", func(t *testing.T) {
		pool := newTestPool(t)
		seedStaff(t, pool, "staff-1", "One@Example.com", "cleaner")

		got, err := NewStaffRepository(pool).GetStaffByEmail(ctx, " ONE@example.com ")
		if err != nil {
			t.Fatalf("GetStaffByEmail returned error: %v", err)
		}
		if got.ID != "staff-1" {
			t.Errorf("id = %q", got.ID)
		}
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		pool := newTestPool(t)
		seedStaff(t, pool, "staff-1", "dup@example.com", "cleaner")

		err := NewStaffRepository(pool).CreateStaff(ctx, persistence.Staff{
			ID:           "staff-2",
			Email:        "dup@example.com",
			DisplayName:  "Dup",
			Role:         "cleaner",
			PasswordHash: "hash",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
		if !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("returns not found for missing updates", func(t *testing.T) {
		pool := newTestPool(t)

		err := NewStaffRepository(pool).UpdateStaff(ctx, persistence.Staff{
			ID:           "missing",
			Email:        "x@example.com",
			Role:         "cleaner",
			PasswordHash: "hash",
		})
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	t.Run("creates, revokes and expires sessions", func(t *testing.T) {
		pool := newTestPool(t)
		seedStaff(t, pool, "staff-1", "one@example.com", "cleaner")
		repo := NewSessionRepository(pool)

		session := persistence.Session{
			ID:        "sess-1",
			StaffID:   "staff-1",
			Token:     "token-1",
			ExpiresAt: reference.Add(time.Hour),
			CreatedAt: reference,
			UpdatedAt: reference,
		}
		if _, err := repo.CreateSession(ctx, session); err != nil {
			t.Fatalf("CreateSession returned error: %v", err)
		}

		got, err := repo.GetSession(ctx, "token-1")
		if err != nil {
			t.Fatalf("GetSession returned error: %v", err)
		}
		if got.RevokedAt != nil {
			t.Errorf("revoked at = %v, want nil", got.RevokedAt)
		}

		revoked, err := repo.RevokeSession(ctx, "token-1", reference.Add(time.Minute))
		if err != nil {
			t.Fatalf("RevokeSession returned error: %v", err)
		}
		if revoked.RevokedAt == nil || !revoked.RevokedAt.Equal(reference.Add(time.Minute)) {
			t.Errorf("revoked at = %v", revoked.RevokedAt)
		}

		if err := repo.DeleteExpiredSessions(ctx, reference.Add(2*time.Hour)); err != nil {
			t.Fatalf("DeleteExpiredSessions returned error: %v", err)
		}
		if _, err := repo.GetSession(ctx, "token-1"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after expiry sweep, got %v", err)
		}
	})

	t.Run("rejects sessions for unknown staff", func(t *testing.T) {
		pool := newTestPool(t)

		_, err := NewSessionRepository(pool).CreateSession(ctx, persistence.Session{
			ID:        "sess-1",
			StaffID:   "ghost",
			Token:     "token-1",
			ExpiresAt: reference,
			CreatedAt: reference,
			UpdatedAt: reference,
		})
		if !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}
	})
}

func TestTaskRepositoryFilters(t *testing.T) {
	ctx := context.Background()
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	pool := newTestPool(t)
	seedStaff(t, pool, "cleaner-1", "one@example.com", "cleaner")
	seedStaff(t, pool, "cleaner-2", "two@example.com", "cleaner")
	seedArea(t, pool, "area-1")

	jobs := NewJobRepository(pool)
	if err := jobs.CreateJob(ctx, persistence.Job{
		ID:        "job-1",
		AreaID:    "area-1",
		Title:     "Mop lobby",
		Schedule:  "00 06 * * *",
		CreatedAt: reference,
		UpdatedAt: reference,
	}); err != nil {
		t.Fatalf("CreateJob returned error: %v", err)
	}

	tasks := NewTaskRepository(pool)
	seed := []persistence.Task{
		{ID: "task-1", JobID: "job-1", AreaID: "area-1", AssigneeID: "cleaner-1", Status: "pending", DueAt: reference.Add(time.Hour)},
		{ID: "task-2", JobID: "job-1", AreaID: "area-1", AssigneeID: "cleaner-1", Status: "completed", DueAt: reference.Add(2 * time.Hour)},
		{ID: "task-3", JobID: "job-1", AreaID: "area-1", AssigneeID: "cleaner-2", Status: "pending", DueAt: reference.Add(3 * time.Hour)},
	}
	for _, task := range seed {
		task.CreatedAt = reference
		task.UpdatedAt = reference
		if err := tasks.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask(%s) returned error: %v", task.ID, err)
		}
	}

	t.Run("filters by assignee", func(t *testing.T) {
		listed, err := tasks.ListTasks(ctx, persistence.TaskFilter{AssigneeID: "cleaner-1"})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("listed = %d, want 2", len(listed))
		}
	})

	t.Run("filters by status", func(t *testing.T) {
		listed, err := tasks.ListTasks(ctx, persistence.TaskFilter{Status: "pending"})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("listed = %d, want 2", len(listed))
		}
	})

	t.Run("filters by due window and orders by due time", func(t *testing.T) {
		from := reference.Add(90 * time.Minute)
		to := reference.Add(4 * time.Hour)
		listed, err := tasks.ListTasks(ctx, persistence.TaskFilter{DueAfter: &from, DueBefore: &to})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("listed = %d, want 2", len(listed))
		}
		if listed[0].ID != "task-2" || listed[1].ID != "task-3" {
			t.Errorf("order = %q, %q", listed[0].ID, listed[1].ID)
		}
	})

	t.Run("keeps same-second fractional boundaries ordered", func(t *testing.T) {
		fractional := persistence.Task{
			ID:         "task-4",
			JobID:      "job-1",
			AreaID:     "area-1",
			AssigneeID: "cleaner-2",
			Status:     "pending",
			DueAt:      reference.Add(4*time.Hour + 500*time.Millisecond),
			CreatedAt:  reference,
			UpdatedAt:  reference,
		}
		if err := tasks.CreateTask(ctx, fractional); err != nil {
			t.Fatalf("CreateTask returned error: %v", err)
		}

		// A whole-second cutoff must exclude tasks due later within that
		// same second.
		cutoff := reference.Add(4 * time.Hour)
		listed, err := tasks.ListTasks(ctx, persistence.TaskFilter{DueBefore: &cutoff})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 3 {
			t.Fatalf("listed = %d, want 3", len(listed))
		}
		for _, task := range listed {
			if task.ID == "task-4" {
				t.Errorf("task due %v leaked past cutoff %v", task.DueAt, cutoff)
			}
		}

		listed, err = tasks.ListTasks(ctx, persistence.TaskFilter{DueAfter: &cutoff})
		if err != nil {
			t.Fatalf("ListTasks returned error: %v", err)
		}
		if len(listed) != 1 || listed[0].ID != "task-4" {
			t.Fatalf("listed after cutoff = %+v, want only task-4", listed)
		}
		if !listed[0].DueAt.Equal(fractional.DueAt) {
			t.Errorf("due at = %v, want %v", listed[0].DueAt, fractional.DueAt)
		}
	})

	t.Run("round trips nullable verification fields", func(t *testing.T) {
		verifiedAt := reference.Add(5 * time.Hour)
		verifier := "cleaner-2"
		updated := seed[1]
		updated.Status = "verified"
		updated.VerifiedAt = &verifiedAt
		updated.VerifierID = &verifier
		updated.UpdatedAt = verifiedAt

		if err := tasks.UpdateTask(ctx, updated); err != nil {
			t.Fatalf("UpdateTask returned error: %v", err)
		}

		got, err := tasks.GetTask(ctx, "task-2")
		if err != nil {
			t.Fatalf("GetTask returned error: %v", err)
		}
		if got.VerifiedAt == nil || !got.VerifiedAt.Equal(verifiedAt) {
			t.Errorf("verified at = %v", got.VerifiedAt)
		}
		if got.VerifierID == nil || *got.VerifierID != "cleaner-2" {
			t.Errorf("verifier = %v", got.VerifierID)
		}
	})
}

func TestAvailabilityRepository(t *testing.T) {
	ctx := context.Background()
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	pool := newTestPool(t)
	seedStaff(t, pool, "cleaner-1", "one@example.com", "cleaner")
	repo := NewAvailabilityRepository(pool)

	start := "08:00"
	end := "16:00"
	first := []persistence.AvailabilityOverride{
		{StaffID: "cleaner-1", Weekday: 1, StartTime: &start, EndTime: &end, IsActive: true, UpdatedAt: reference},
		{StaffID: "cleaner-1", Weekday: 2, IsActive: false, UpdatedAt: reference},
	}
	if err := repo.ReplaceAvailability(ctx, "cleaner-1", first); err != nil {
		t.Fatalf("ReplaceAvailability returned error: %v", err)
	}

	rows, err := repo.ListAvailability(ctx, "cleaner-1")
	if err != nil {
		t.Fatalf("ListAvailability returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Weekday != 1 || !rows[0].IsActive || rows[0].StartTime == nil || *rows[0].StartTime != "08:00" {
		t.Errorf("monday row = %+v", rows[0])
	}
	if rows[1].Weekday != 2 || rows[1].IsActive || rows[1].StartTime != nil {
		t.Errorf("tuesday row = %+v", rows[1])
	}

	// Saving again upserts in place rather than duplicating rows.
	second := []persistence.AvailabilityOverride{
		{StaffID: "cleaner-1", Weekday: 1, IsActive: false, UpdatedAt: reference.Add(time.Hour)},
	}
	if err := repo.ReplaceAvailability(ctx, "cleaner-1", second); err != nil {
		t.Fatalf("ReplaceAvailability returned error: %v", err)
	}

	rows, err = repo.ListAvailability(ctx, "cleaner-1")
	if err != nil {
		t.Fatalf("ListAvailability returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows after upsert = %d, want 2", len(rows))
	}
	if rows[0].IsActive || rows[0].StartTime != nil {
		t.Errorf("monday row after upsert = %+v", rows[0])
	}
}
