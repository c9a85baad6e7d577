package sqlite

import (
	"context"
	"fmt"

	"github.com/example/cleanops/internal/persistence"
)

// LocationRepository implements persistence.LocationRepository using SQLite.
// Sites, zones and areas share a repository because they form one hierarchy
// and are almost always edited together.
type LocationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewLocationRepository creates a new SQLite location repository.
func NewLocationRepository(pool *ConnectionPool) *LocationRepository {
	return &LocationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSite inserts a new site.
func (r *LocationRepository) CreateSite(ctx context.Context, site persistence.Site) error {
	if site.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx,
		"INSERT INTO sites (id, name, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		site.ID, site.Name, site.Address, formatTime(site.CreatedAt), formatTime(site.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateSite updates an existing site.
func (r *LocationRepository) UpdateSite(ctx context.Context, site persistence.Site) error {
	result, err := r.helper.Exec(ctx,
		"UPDATE sites SET name = ?, address = ?, updated_at = ? WHERE id = ?",
		site.Name, site.Address, formatTime(site.UpdatedAt), site.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return r.requireRow(result.RowsAffected())
}

// GetSite retrieves a site by ID.
func (r *LocationRepository) GetSite(ctx context.Context, id string) (persistence.Site, error) {
	if id == "" {
		return persistence.Site{}, persistence.ErrNotFound
	}

	var site persistence.Site
	var createdAt, updatedAt string
	err := r.helper.QueryRow(ctx,
		"SELECT id, name, address, created_at, updated_at FROM sites WHERE id = ?", id,
	).Scan(&site.ID, &site.Name, &site.Address, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Site{}, r.mapper.MapError(err)
	}

	if site.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Site{}, err
	}
	if site.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Site{}, err
	}
	return site, nil
}

// ListSites returns all sites ordered by name then ID.
func (r *LocationRepository) ListSites(ctx context.Context) ([]persistence.Site, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT id, name, address, created_at, updated_at FROM sites ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.Site
	for rows.Next() {
		var site persistence.Site
		var createdAt, updatedAt string
		if err := rows.Scan(&site.ID, &site.Name, &site.Address, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if site.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if site.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		out = append(out, site)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// DeleteSite removes a site and, through cascading foreign keys, its zones
// and areas.
func (r *LocationRepository) DeleteSite(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM sites WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return r.requireRow(result.RowsAffected())
}

// CreateZone inserts a new zone under its site.
func (r *LocationRepository) CreateZone(ctx context.Context, zone persistence.Zone) error {
	if zone.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx,
		"INSERT INTO zones (id, site_id, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		zone.ID, zone.SiteID, zone.Name, formatTime(zone.CreatedAt), formatTime(zone.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// GetZone retrieves a zone by ID.
func (r *LocationRepository) GetZone(ctx context.Context, id string) (persistence.Zone, error) {
	if id == "" {
		return persistence.Zone{}, persistence.ErrNotFound
	}

	var zone persistence.Zone
	var createdAt, updatedAt string
	err := r.helper.QueryRow(ctx,
		"SELECT id, site_id, name, created_at, updated_at FROM zones WHERE id = ?", id,
	).Scan(&zone.ID, &zone.SiteID, &zone.Name, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Zone{}, r.mapper.MapError(err)
	}

	if zone.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Zone{}, err
	}
	if zone.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Zone{}, err
	}
	return zone, nil
}

// ListZones returns zones, optionally scoped to one site, ordered by name.
func (r *LocationRepository) ListZones(ctx context.Context, siteID string) ([]persistence.Zone, error) {
	query := "SELECT id, site_id, name, created_at, updated_at FROM zones"
	args := []any{}
	if siteID != "" {
		query += " WHERE site_id = ?"
		args = append(args, siteID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.Zone
	for rows.Next() {
		var zone persistence.Zone
		var createdAt, updatedAt string
		if err := rows.Scan(&zone.ID, &zone.SiteID, &zone.Name, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if zone.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if zone.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		out = append(out, zone)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// DeleteZone removes a zone and its areas.
func (r *LocationRepository) DeleteZone(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM zones WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return r.requireRow(result.RowsAffected())
}

// CreateArea inserts a new area under its zone.
func (r *LocationRepository) CreateArea(ctx context.Context, area persistence.Area) error {
	if area.ID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx,
		"INSERT INTO areas (id, zone_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		area.ID, area.ZoneID, area.Name, area.Description, formatTime(area.CreatedAt), formatTime(area.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateArea updates an existing area.
func (r *LocationRepository) UpdateArea(ctx context.Context, area persistence.Area) error {
	result, err := r.helper.Exec(ctx,
		"UPDATE areas SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		area.Name, area.Description, formatTime(area.UpdatedAt), area.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return r.requireRow(result.RowsAffected())
}

// GetArea retrieves an area by ID.
func (r *LocationRepository) GetArea(ctx context.Context, id string) (persistence.Area, error) {
	if id == "" {
		return persistence.Area{}, persistence.ErrNotFound
	}

	var area persistence.Area
	var createdAt, updatedAt string
	err := r.helper.QueryRow(ctx,
		"SELECT id, zone_id, name, description, created_at, updated_at FROM areas WHERE id = ?", id,
	).Scan(&area.ID, &area.ZoneID, &area.Name, &area.Description, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Area{}, r.mapper.MapError(err)
	}

	if area.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Area{}, err
	}
	if area.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return persistence.Area{}, err
	}
	return area, nil
}

// ListAreas returns areas, optionally scoped to one zone, ordered by name.
func (r *LocationRepository) ListAreas(ctx context.Context, zoneID string) ([]persistence.Area, error) {
	query := "SELECT id, zone_id, name, description, created_at, updated_at FROM areas"
	args := []any{}
	if zoneID != "" {
		query += " WHERE zone_id = ?"
		args = append(args, zoneID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var out []persistence.Area
	for rows.Next() {
		var area persistence.Area
		var createdAt, updatedAt string
		if err := rows.Scan(&area.ID, &area.ZoneID, &area.Name, &area.Description, &createdAt, &updatedAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if area.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if area.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		out = append(out, area)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return out, nil
}

// DeleteArea removes an area and, through cascading foreign keys, its jobs
// and tasks.
func (r *LocationRepository) DeleteArea(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM areas WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return r.requireRow(result.RowsAffected())
}

func (r *LocationRepository) requireRow(rowsAffected int64, err error) error {
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
