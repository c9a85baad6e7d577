package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cleanops/internal/persistence"
	"github.com/example/cleanops/internal/routing"
)

type staffRepoStub struct {
	byID    map[string]persistence.Staff
	byEmail map[string]persistence.Staff

	created []persistence.Staff
	updated []persistence.Staff
	deleted []string

	createErr error
	updateErr error
	listErr   error
}

func newStaffRepoStub(staff ...persistence.Staff) *staffRepoStub {
	stub := &staffRepoStub{
		byID:    make(map[string]persistence.Staff),
		byEmail: make(map[string]persistence.Staff),
	}
	for _, member := range staff {
		stub.byID[member.ID] = member
		stub.byEmail[member.Email] = member
	}
	return stub
}

func (r *staffRepoStub) CreateStaff(ctx context.Context, staff persistence.Staff) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byEmail[staff.Email]; ok {
		return persistence.ErrDuplicate
	}
	r.created = append(r.created, staff)
	r.byID[staff.ID] = staff
	r.byEmail[staff.Email] = staff
	return nil
}

func (r *staffRepoStub) UpdateStaff(ctx context.Context, staff persistence.Staff) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[staff.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.updated = append(r.updated, staff)
	r.byID[staff.ID] = staff
	return nil
}

func (r *staffRepoStub) GetStaff(ctx context.Context, id string) (persistence.Staff, error) {
	staff, ok := r.byID[id]
	if !ok {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	return staff, nil
}

func (r *staffRepoStub) GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error) {
	staff, ok := r.byEmail[email]
	if !ok {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	return staff, nil
}

func (r *staffRepoStub) ListStaff(ctx context.Context) ([]persistence.Staff, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]persistence.Staff, 0, len(r.byID))
	for _, staff := range r.byID {
		out = append(out, staff)
	}
	return out, nil
}

func (r *staffRepoStub) DeleteStaff(ctx context.Context, id string) error {
	staff, ok := r.byID[id]
	if !ok {
		return persistence.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, staff.Email)
	r.deleted = append(r.deleted, id)
	return nil
}

type sessionRepoStub struct {
	byToken map[string]persistence.Session

	created   []persistence.Session
	revoked   []string
	createErr error
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{byToken: make(map[string]persistence.Session)}
}

func (r *sessionRepoStub) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if r.createErr != nil {
		return persistence.Session{}, r.createErr
	}
	r.created = append(r.created, session)
	r.byToken[session.Token] = session
	return session, nil
}

func (r *sessionRepoStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := r.byToken[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *sessionRepoStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, ok := r.byToken[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	r.byToken[token] = session
	r.revoked = append(r.revoked, token)
	return session, nil
}

func (r *sessionRepoStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	for token, session := range r.byToken {
		if session.ExpiresAt.Before(reference) {
			delete(r.byToken, token)
		}
	}
	return nil
}

func testClock(reference time.Time) func() time.Time {
	return func() time.Time { return reference }
}

func sequenceIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return prefix + "-" + string(rune('0'+counter))
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	hash, err := CreatePasswordHash("br00m-cl0set", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash returned error: %v", err)
	}

	account := persistence.Staff{
		ID:           "staff-1",
		Email:        "cleaner@example.com",
		DisplayName:  "Cleaner One",
		Role:         "cleaner",
		PasswordHash: hash,
	}

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		sessions := newSessionRepoStub()
		svc := NewAuthService(newStaffRepoStub(account), sessions, nil, sequenceIDs("tok"), testClock(reference), time.Hour, nil)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "Cleaner@Example.com",
			Password: "br00m-cl0set",
		})
		if err != nil {
			t.Fatalf("Authenticate returned error: %v", err)
		}

		if result.Staff.ID != "staff-1" {
			t.Errorf("staff id = %q", result.Staff.ID)
		}
		if result.Staff.Role != routing.RoleCleaner {
			t.Errorf("role = %v, want cleaner", result.Staff.Role)
		}
		if result.Session.Token == "" {
			t.Error("expected a session token")
		}
		if !result.Session.ExpiresAt.Equal(reference.Add(time.Hour)) {
			t.Errorf("expiry = %v", result.Session.ExpiresAt)
		}
		if len(sessions.created) != 1 {
			t.Errorf("created sessions = %d, want 1", len(sessions.created))
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		svc := NewAuthService(newStaffRepoStub(account), newSessionRepoStub(), nil, sequenceIDs("tok"), testClock(reference), time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "cleaner@example.com",
			Password: "wrong",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects an unknown account without leaking existence", func(t *testing.T) {
		svc := NewAuthService(newStaffRepoStub(), newSessionRepoStub(), nil, sequenceIDs("tok"), testClock(reference), time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "ghost@example.com",
			Password: "anything",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects a disabled account", func(t *testing.T) {
		disabled := account
		disabled.Disabled = true
		svc := NewAuthService(newStaffRepoStub(disabled), newSessionRepoStub(), nil, sequenceIDs("tok"), testClock(reference), time.Hour, nil)

		_, err := svc.Authenticate(context.Background(), AuthenticateParams{
			Email:    "cleaner@example.com",
			Password: "br00m-cl0set",
		})
		if !errors.Is(err, ErrAccountDisabled) {
			t.Fatalf("expected ErrAccountDisabled, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	account := persistence.Staff{ID: "staff-2", Email: "super@example.com", Role: "supervisor"}

	newService := func(sessions *sessionRepoStub) *AuthService {
		return NewAuthService(newStaffRepoStub(account), sessions, nil, sequenceIDs("tok"), testClock(reference), time.Hour, nil)
	}

	t.Run("resolves the principal for a live session", func(t *testing.T) {
		sessions := newSessionRepoStub()
		sessions.byToken["live"] = persistence.Session{StaffID: "staff-2", Token: "live", ExpiresAt: reference.Add(time.Minute)}

		principal, err := newService(sessions).ValidateSession(context.Background(), "live")
		if err != nil {
			t.Fatalf("ValidateSession returned error: %v", err)
		}
		if principal.StaffID != "staff-2" || principal.Role != routing.RoleSupervisor {
			t.Fatalf("principal = %+v", principal)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		sessions := newSessionRepoStub()
		sessions.byToken["old"] = persistence.Session{StaffID: "staff-2", Token: "old", ExpiresAt: reference.Add(-time.Minute)}

		_, err := newService(sessions).ValidateSession(context.Background(), "old")
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		revokedAt := reference.Add(-time.Minute)
		sessions := newSessionRepoStub()
		sessions.byToken["gone"] = persistence.Session{StaffID: "staff-2", Token: "gone", ExpiresAt: reference.Add(time.Minute), RevokedAt: &revokedAt}

		_, err := newService(sessions).ValidateSession(context.Background(), "gone")
		if !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		_, err := newService(newSessionRepoStub()).ValidateSession(context.Background(), "missing")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RevokeSession(t *testing.T) {
	reference := time.Date(2025, time.April, 7, 9, 0, 0, 0, time.UTC)
	sessions := newSessionRepoStub()
	sessions.byToken["tok"] = persistence.Session{StaffID: "staff-1", Token: "tok", ExpiresAt: reference.Add(time.Hour)}

	svc := NewAuthService(newStaffRepoStub(), sessions, nil, nil, testClock(reference), time.Hour, nil)

	if err := svc.RevokeSession(context.Background(), "tok"); err != nil {
		t.Fatalf("RevokeSession returned error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "tok" {
		t.Fatalf("revoked = %v", sessions.revoked)
	}

	if err := svc.RevokeSession(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
