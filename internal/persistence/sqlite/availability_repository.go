package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/cleanops/internal/persistence"
)

// AvailabilityRepository implements persistence.AvailabilityRepository using
// SQLite.
type AvailabilityRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAvailabilityRepository creates a new SQLite availability repository.
func NewAvailabilityRepository(pool *ConnectionPool) *AvailabilityRepository {
	return &AvailabilityRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// ListAvailability returns the stored override rows for a staff member
// ordered by weekday.
func (r *AvailabilityRepository) ListAvailability(ctx context.Context, staffID string) ([]persistence.AvailabilityOverride, error) {
	if staffID == "" {
		return nil, persistence.ErrNotFound
	}

	rows, err := r.helper.Query(ctx, `
		SELECT staff_id, weekday, start_time, end_time, is_active, updated_at
		FROM availability_overrides
		WHERE staff_id = ?
		ORDER BY weekday ASC
	`, staffID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.AvailabilityOverride
	for rows.Next() {
		var row persistence.AvailabilityOverride
		var updatedAt string
		if err := rows.Scan(&row.StaffID, &row.Weekday, &row.StartTime, &row.EndTime, &row.IsActive, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if row.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// ReplaceAvailability upserts the full row set for a staff member in one
// transaction, keyed by (staff_id, weekday).
func (r *AvailabilityRepository) ReplaceAvailability(ctx context.Context, staffID string, rows []persistence.AvailabilityOverride) error {
	if staffID == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, row := range rows {
			_, err := r.helper.ExecTx(tx, `
				INSERT INTO availability_overrides (staff_id, weekday, start_time, end_time, is_active, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT (staff_id, weekday) DO UPDATE SET
					start_time = excluded.start_time,
					end_time = excluded.end_time,
					is_active = excluded.is_active,
					updated_at = excluded.updated_at
			`,
				staffID,
				row.Weekday,
				row.StartTime,
				row.EndTime,
				row.IsActive,
				formatTime(row.UpdatedAt),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}
