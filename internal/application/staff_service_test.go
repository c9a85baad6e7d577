package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cleanops/internal/availability"
	"github.com/example/cleanops/internal/persistence"
	"github.com/example/cleanops/internal/routing"
)

type availabilityRepoStub struct {
	rows     map[string][]persistence.AvailabilityOverride
	replaced map[string][]persistence.AvailabilityOverride

	listErr    error
	replaceErr error
}

func newAvailabilityRepoStub() *availabilityRepoStub {
	return &availabilityRepoStub{
		rows:     make(map[string][]persistence.AvailabilityOverride),
		replaced: make(map[string][]persistence.AvailabilityOverride),
	}
}

func (r *availabilityRepoStub) ListAvailability(ctx context.Context, staffID string) ([]persistence.AvailabilityOverride, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.rows[staffID], nil
}

func (r *availabilityRepoStub) ReplaceAvailability(ctx context.Context, staffID string, rows []persistence.AvailabilityOverride) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.replaced[staffID] = rows
	r.rows[staffID] = rows
	return nil
}

var (
	adminPrincipal      = Principal{StaffID: "admin-1", Role: routing.RoleAdmin}
	supervisorPrincipal = Principal{StaffID: "super-1", Role: routing.RoleSupervisor}
	cleanerPrincipal    = Principal{StaffID: "cleaner-1", Role: routing.RoleCleaner}
)

func TestStaffService_CreateStaff(t *testing.T) {
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)

	t.Run("creates an account for an administrator", func(t *testing.T) {
		repo := newStaffRepoStub()
		svc := NewStaffService(repo, newAvailabilityRepoStub(), sequenceIDs("staff"), testClock(reference), nil)
		svc.hashPassword = func(password string) (string, error) { return "hashed:" + password, nil }

		created, err := svc.CreateStaff(context.Background(), adminPrincipal, StaffInput{
			Email:       " New.Cleaner@Example.com ",
			DisplayName: "New Cleaner",
			Role:        routing.RoleCleaner,
			Password:    "sparkle",
		})
		if err != nil {
			t.Fatalf("CreateStaff returned error: %v", err)
		}

		if created.Email != "new.cleaner@example.com" {
			t.Errorf("email = %q, want normalized lowercase", created.Email)
		}
		if created.Role != routing.RoleCleaner {
			t.Errorf("role = %v", created.Role)
		}
		if len(repo.created) != 1 {
			t.Fatalf("created rows = %d, want 1", len(repo.created))
		}
		if repo.created[0].PasswordHash != "hashed:sparkle" {
			t.Errorf("stored hash = %q", repo.created[0].PasswordHash)
		}
	})

	t.Run("rejects non administrators", func(t *testing.T) {
		svc := NewStaffService(newStaffRepoStub(), newAvailabilityRepoStub(), nil, testClock(reference), nil)

		_, err := svc.CreateStaff(context.Background(), supervisorPrincipal, StaffInput{
			Email:       "x@example.com",
			DisplayName: "X",
			Role:        routing.RoleCleaner,
			Password:    "pw",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("accumulates validation failures", func(t *testing.T) {
		svc := NewStaffService(newStaffRepoStub(), newAvailabilityRepoStub(), nil, testClock(reference), nil)

		_, err := svc.CreateStaff(context.Background(), adminPrincipal, StaffInput{})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"email", "display_name", "role", "password"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("missing field error for %q", field)
			}
		}
	})

	t.Run("maps duplicate emails to a field error", func(t *testing.T) {
		existing := persistence.Staff{ID: "staff-0", Email: "taken@example.com", DisplayName: "Taken", Role: "cleaner"}
		svc := NewStaffService(newStaffRepoStub(existing), newAvailabilityRepoStub(), sequenceIDs("staff"), testClock(reference), nil)
		svc.hashPassword = func(password string) (string, error) { return "h", nil }

		_, err := svc.CreateStaff(context.Background(), adminPrincipal, StaffInput{
			Email:       "taken@example.com",
			DisplayName: "Dup",
			Role:        routing.RoleCleaner,
			Password:    "pw",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestStaffService_GetStaff(t *testing.T) {
	account := persistence.Staff{ID: "cleaner-1", Email: "c@example.com", DisplayName: "C", Role: "cleaner"}
	svc := NewStaffService(newStaffRepoStub(account), newAvailabilityRepoStub(), nil, nil, nil)

	t.Run("allows self read", func(t *testing.T) {
		got, err := svc.GetStaff(context.Background(), cleanerPrincipal, "cleaner-1")
		if err != nil {
			t.Fatalf("GetStaff returned error: %v", err)
		}
		if got.ID != "cleaner-1" {
			t.Errorf("id = %q", got.ID)
		}
	})

	t.Run("denies cleaners reading others", func(t *testing.T) {
		_, err := svc.GetStaff(context.Background(), cleanerPrincipal, "someone-else")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("allows supervisors reading anyone", func(t *testing.T) {
		if _, err := svc.GetStaff(context.Background(), supervisorPrincipal, "cleaner-1"); err != nil {
			t.Fatalf("GetStaff returned error: %v", err)
		}
	})
}

func TestStaffService_GetWeeklyAvailability(t *testing.T) {
	start := "07:00"
	end := "11:30"

	overrides := newAvailabilityRepoStub()
	overrides.rows["cleaner-1"] = []persistence.AvailabilityOverride{
		{StaffID: "cleaner-1", Weekday: int(time.Tuesday), StartTime: &start, EndTime: &end, IsActive: true},
		{StaffID: "cleaner-1", Weekday: int(time.Saturday), IsActive: false},
	}

	svc := NewStaffService(newStaffRepoStub(), overrides, nil, nil, nil)

	week, err := svc.GetWeeklyAvailability(context.Background(), cleanerPrincipal, "cleaner-1")
	if err != nil {
		t.Fatalf("GetWeeklyAvailability returned error: %v", err)
	}

	tuesday := week[time.Tuesday]
	if !tuesday.IsActive || tuesday.StartTime != "07:00" || tuesday.EndTime != "11:30" {
		t.Errorf("tuesday = %+v", tuesday)
	}
	if week[time.Saturday].IsActive {
		t.Error("saturday should be inactive")
	}
	monday := week[time.Monday]
	if monday.IsActive || monday.StartTime != availability.DefaultStartTime || monday.EndTime != availability.DefaultEndTime {
		t.Errorf("monday should carry inactive defaults, got %+v", monday)
	}
}

func TestStaffService_SaveWeeklyAvailability(t *testing.T) {
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	account := persistence.Staff{ID: "cleaner-1", Email: "c@example.com", Role: "cleaner"}

	t.Run("persists seven rows with nulled inactive times", func(t *testing.T) {
		overrides := newAvailabilityRepoStub()
		svc := NewStaffService(newStaffRepoStub(account), overrides, nil, testClock(reference), nil)

		var week WeeklyAvailability
		for day := time.Sunday; day <= time.Saturday; day++ {
			week[day] = availability.Day{IsActive: true, StartTime: "08:00", EndTime: "16:00"}
		}
		week[time.Sunday] = availability.Day{IsActive: false, StartTime: "08:00", EndTime: "16:00"}

		if err := svc.SaveWeeklyAvailability(context.Background(), cleanerPrincipal, "cleaner-1", week); err != nil {
			t.Fatalf("SaveWeeklyAvailability returned error: %v", err)
		}

		rows := overrides.replaced["cleaner-1"]
		if len(rows) != 7 {
			t.Fatalf("replaced rows = %d, want 7", len(rows))
		}
		for _, row := range rows {
			if row.Weekday == int(time.Sunday) {
				if row.IsActive || row.StartTime != nil || row.EndTime != nil {
					t.Errorf("sunday row should be inactive with nil times, got %+v", row)
				}
				continue
			}
			if !row.IsActive || row.StartTime == nil || *row.StartTime != "08:00" {
				t.Errorf("weekday %d row = %+v", row.Weekday, row)
			}
			if !row.UpdatedAt.Equal(reference) {
				t.Errorf("weekday %d updated at = %v", row.Weekday, row.UpdatedAt)
			}
		}
	})

	t.Run("rejects editing another member's week", func(t *testing.T) {
		svc := NewStaffService(newStaffRepoStub(account), newAvailabilityRepoStub(), nil, testClock(reference), nil)

		err := svc.SaveWeeklyAvailability(context.Background(), cleanerPrincipal, "other", WeeklyAvailability{})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rejects an unknown staff member", func(t *testing.T) {
		svc := NewStaffService(newStaffRepoStub(), newAvailabilityRepoStub(), nil, testClock(reference), nil)

		err := svc.SaveWeeklyAvailability(context.Background(), adminPrincipal, "ghost", WeeklyAvailability{})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
