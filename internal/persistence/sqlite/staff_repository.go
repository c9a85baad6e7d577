package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/cleanops/internal/persistence"
)

// StaffRepository implements persistence.StaffRepository using SQLite.
type StaffRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(pool *ConnectionPool) *StaffRepository {
	return &StaffRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const staffColumns = "id, email, display_name, role, password_hash, disabled, created_at, updated_at"

// CreateStaff inserts a new staff account.
func (r *StaffRepository) CreateStaff(ctx context.Context, staff persistence.Staff) error {
	if staff.ID == "" || staff.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO staff (` + staffColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		staff.ID,
		normalizeEmail(staff.Email),
		staff.DisplayName,
		staff.Role,
		staff.PasswordHash,
		staff.Disabled,
		formatTime(staff.CreatedAt),
		formatTime(staff.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateStaff updates an existing staff account.
func (r *StaffRepository) UpdateStaff(ctx context.Context, staff persistence.Staff) error {
	if staff.ID == "" || staff.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE staff
		SET email = ?, display_name = ?, role = ?, password_hash = ?, disabled = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		normalizeEmail(staff.Email),
		staff.DisplayName,
		staff.Role,
		staff.PasswordHash,
		staff.Disabled,
		formatTime(staff.UpdatedAt),
		staff.ID,
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

// GetStaff retrieves a staff account by ID.
func (r *StaffRepository) GetStaff(ctx context.Context, id string) (persistence.Staff, error) {
	if id == "" {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+staffColumns+" FROM staff WHERE id = ?", id)
	return r.scanStaff(row)
}

// GetStaffByEmail retrieves a staff account by normalized email address.
func (r *StaffRepository) GetStaffByEmail(ctx context.Context, email string) (persistence.Staff, error) {
	if email == "" {
		return persistence.Staff{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, "SELECT "+staffColumns+" FROM staff WHERE email = ?", normalizeEmail(email))
	return r.scanStaff(row)
}

// ListStaff returns all staff accounts ordered by creation timestamp then ID.
func (r *StaffRepository) ListStaff(ctx context.Context) ([]persistence.Staff, error) {
	rows, err := r.helper.Query(ctx, "SELECT "+staffColumns+" FROM staff ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.Staff
	for rows.Next() {
		staff, err := r.scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, staff)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// DeleteStaff removes a staff account. Accounts referenced by tasks cannot be
// removed; the foreign key rejects the delete.
func (r *StaffRepository) DeleteStaff(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, "DELETE FROM staff WHERE id = ?", id)
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
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *StaffRepository) scanStaff(row rowScanner) (persistence.Staff, error) {
	var staff persistence.Staff
	var createdAt, updatedAt string

	err := row.Scan(
		&staff.ID,
		&staff.Email,
		&staff.DisplayName,
		&staff.Role,
		&staff.PasswordHash,
		&staff.Disabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Staff{}, r.mapper.MapError(err)
	}

	if staff.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Staff{}, err
	}
	if staff.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Staff{}, err
	}
	return staff, nil
}

// normalizeEmail normalizes email addresses for consistent storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
