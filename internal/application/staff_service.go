package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/cleanops/internal/availability"
	"github.com/example/cleanops/internal/persistence"
	"github.com/example/cleanops/internal/routing"
)

// StaffService manages workforce accounts and their weekly availability.
type StaffService struct {
	staff        persistence.StaffRepository
	availability persistence.AvailabilityRepository
	hashPassword func(password string) (string, error)
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewStaffService wires dependencies for staff operations.
func NewStaffService(staff persistence.StaffRepository, overrides persistence.AvailabilityRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *StaffService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &StaffService{
		staff:        staff,
		availability: overrides,
		hashPassword: func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		},
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *StaffService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StaffService", operation, attrs...)
}

// CreateStaff registers a new account. Administrator only.
func (s *StaffService) CreateStaff(ctx context.Context, principal Principal, input StaffInput) (Staff, error) {
	if s == nil || s.staff == nil {
		return Staff{}, fmt.Errorf("staff repository not configured")
	}
	if !principal.IsAdmin() {
		return Staff{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	email := validateStaffCore(input, vErr)
	if strings.TrimSpace(input.Password) == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		return Staff{}, vErr
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return Staff{}, err
	}

	now := s.now()
	stored := persistence.Staff{
		ID:           s.idGenerator(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Role:         input.Role.String(),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.staff.CreateStaff(ctx, stored); err != nil {
		return Staff{}, mapRepoError(err)
	}

	s.log(ctx, "CreateStaff", "staff_id", stored.ID, "role", stored.Role).InfoContext(ctx, "staff created")
	return toStaff(stored), nil
}

// UpdateStaff changes account attributes. Administrator only; the password is
// left untouched unless a new one is supplied.
func (s *StaffService) UpdateStaff(ctx context.Context, principal Principal, staffID string, input StaffInput) (Staff, error) {
	if s == nil || s.staff == nil {
		return Staff{}, fmt.Errorf("staff repository not configured")
	}
	if !principal.IsAdmin() {
		return Staff{}, ErrUnauthorized
	}

	existing, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		return Staff{}, mapRepoError(err)
	}

	vErr := &ValidationError{}
	email := validateStaffCore(input, vErr)
	if vErr.HasErrors() {
		return Staff{}, vErr
	}

	updated := existing
	updated.Email = email
	updated.DisplayName = strings.TrimSpace(input.DisplayName)
	updated.Role = input.Role.String()
	updated.UpdatedAt = s.now()

	if input.Password != "" {
		hash, err := s.hashPassword(input.Password)
		if err != nil {
			return Staff{}, err
		}
		updated.PasswordHash = hash
	}

	if err := s.staff.UpdateStaff(ctx, updated); err != nil {
		return Staff{}, mapRepoError(err)
	}

	s.log(ctx, "UpdateStaff", "staff_id", staffID).InfoContext(ctx, "staff updated")
	return toStaff(updated), nil
}

// GetStaff returns one account. Staff can read themselves; supervisors and
// administrators can read anyone.
func (s *StaffService) GetStaff(ctx context.Context, principal Principal, staffID string) (Staff, error) {
	if s == nil || s.staff == nil {
		return Staff{}, fmt.Errorf("staff repository not configured")
	}
	if principal.StaffID != staffID && !principal.CanSupervise() {
		return Staff{}, ErrUnauthorized
	}

	stored, err := s.staff.GetStaff(ctx, staffID)
	if err != nil {
		return Staff{}, mapRepoError(err)
	}
	return toStaff(stored), nil
}

// ListStaff enumerates accounts. Supervisors and administrators only.
func (s *StaffService) ListStaff(ctx context.Context, principal Principal) ([]Staff, error) {
	if s == nil || s.staff == nil {
		return nil, fmt.Errorf("staff repository not configured")
	}
	if !principal.CanSupervise() {
		return nil, ErrUnauthorized
	}

	models, err := s.staff.ListStaff(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}

	out := make([]Staff, 0, len(models))
	for _, model := range models {
		out = append(out, toStaff(model))
	}
	return out, nil
}

// DeleteStaff removes an account. Administrator only.
func (s *StaffService) DeleteStaff(ctx context.Context, principal Principal, staffID string) error {
	if s == nil || s.staff == nil {
		return fmt.Errorf("staff repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}

	if err := s.staff.DeleteStaff(ctx, staffID); err != nil {
		return mapRepoError(err)
	}

	s.log(ctx, "DeleteStaff", "staff_id", staffID).InfoContext(ctx, "staff deleted")
	return nil
}

// GetWeeklyAvailability hydrates the sparse override rows for a staff member
// into the complete seven day structure. Staff can read their own week;
// supervisors and administrators can read anyone's.
func (s *StaffService) GetWeeklyAvailability(ctx context.Context, principal Principal, staffID string) (WeeklyAvailability, error) {
	if s == nil || s.availability == nil {
		return WeeklyAvailability{}, fmt.Errorf("availability repository not configured")
	}
	if principal.StaffID != staffID && !principal.CanSupervise() {
		return WeeklyAvailability{}, ErrUnauthorized
	}

	rows, err := s.availability.ListAvailability(ctx, staffID)
	if err != nil {
		return WeeklyAvailability{}, mapRepoError(err)
	}

	overrides := make([]availability.OverrideRow, 0, len(rows))
	for _, row := range rows {
		overrides = append(overrides, availability.OverrideRow{
			Weekday:   time.Weekday(row.Weekday),
			StartTime: row.StartTime,
			EndTime:   row.EndTime,
			IsActive:  row.IsActive,
		})
	}

	return availability.Hydrate(overrides), nil
}

// SaveWeeklyAvailability flattens an edited week into per-weekday upsert rows
// and replaces the stored set for the staff member. Staff can edit their own
// week; supervisors and administrators can edit anyone's.
func (s *StaffService) SaveWeeklyAvailability(ctx context.Context, principal Principal, staffID string, week WeeklyAvailability) error {
	if s == nil || s.availability == nil {
		return fmt.Errorf("availability repository not configured")
	}
	if principal.StaffID != staffID && !principal.CanSupervise() {
		return ErrUnauthorized
	}
	if s.staff != nil {
		if _, err := s.staff.GetStaff(ctx, staffID); err != nil {
			return mapRepoError(err)
		}
	}

	now := s.now()
	upserts := availability.Flatten(week, staffID)
	rows := make([]persistence.AvailabilityOverride, 0, len(upserts))
	for _, upsert := range upserts {
		rows = append(rows, persistence.AvailabilityOverride{
			StaffID:   upsert.StaffID,
			Weekday:   int(upsert.Weekday),
			StartTime: upsert.StartTime,
			EndTime:   upsert.EndTime,
			IsActive:  upsert.IsActive,
			UpdatedAt: now,
		})
	}

	if err := s.availability.ReplaceAvailability(ctx, staffID, rows); err != nil {
		return mapRepoError(err)
	}

	s.log(ctx, "SaveWeeklyAvailability", "staff_id", staffID).InfoContext(ctx, "availability saved")
	return nil
}

func validateStaffCore(input StaffInput, vErr *ValidationError) string {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}

	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}

	if input.Role == routing.RoleUnknown {
		vErr.add("role", "role must be cleaner, supervisor or admin")
	}

	return email
}
