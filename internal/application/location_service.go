package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/cleanops/internal/persistence"
)

// ScanTokenCodec mints and verifies the signed tokens printed on area codes.
type ScanTokenCodec interface {
	Mint(areaID string) (string, error)
	Verify(token string) (string, error)
}

// LocationService manages the site/zone/area hierarchy and the scan tokens
// that link printed codes to areas.
type LocationService struct {
	locations   persistence.LocationRepository
	scanTokens  ScanTokenCodec
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewLocationService wires dependencies for location operations.
func NewLocationService(locations persistence.LocationRepository, scanTokens ScanTokenCodec, idGenerator func() string, now func() time.Time, logger *slog.Logger) *LocationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &LocationService{
		locations:   locations,
		scanTokens:  scanTokens,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *LocationService) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "LocationService", operation, attrs...)
}

// CreateSite registers a new site. Administrator only.
func (s *LocationService) CreateSite(ctx context.Context, principal Principal, input SiteInput) (Site, error) {
	if s == nil || s.locations == nil {
		return Site{}, fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return Site{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return Site{}, vErr
	}

	now := s.now()
	stored := persistence.Site{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.locations.CreateSite(ctx, stored); err != nil {
		return Site{}, mapRepoError(err)
	}

	s.log(ctx, "CreateSite", "site_id", stored.ID).InfoContext(ctx, "site created")
	return toSite(stored), nil
}

// ListSites enumerates sites for any authenticated principal.
func (s *LocationService) ListSites(ctx context.Context, principal Principal) ([]Site, error) {
	if s == nil || s.locations == nil {
		return nil, fmt.Errorf("location repository not configured")
	}

	models, err := s.locations.ListSites(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]Site, 0, len(models))
	for _, model := range models {
		out = append(out, toSite(model))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// DeleteSite removes a site. Administrator only.
func (s *LocationService) DeleteSite(ctx context.Context, principal Principal, siteID string) error {
	if s == nil || s.locations == nil {
		return fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.locations.DeleteSite(ctx, siteID); err != nil {
		return mapRepoError(err)
	}
	s.log(ctx, "DeleteSite", "site_id", siteID).InfoContext(ctx, "site deleted")
	return nil
}

// CreateZone registers a zone within a site. Administrator only.
func (s *LocationService) CreateZone(ctx context.Context, principal Principal, input ZoneInput) (Zone, error) {
	if s == nil || s.locations == nil {
		return Zone{}, fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return Zone{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.SiteID) == "" {
		vErr.add("site_id", "site is required")
	}
	if vErr.HasErrors() {
		return Zone{}, vErr
	}

	if _, err := s.locations.GetSite(ctx, input.SiteID); err != nil {
		return Zone{}, mapRepoError(err)
	}

	now := s.now()
	stored := persistence.Zone{
		ID:        s.idGenerator(),
		SiteID:    input.SiteID,
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.locations.CreateZone(ctx, stored); err != nil {
		return Zone{}, mapRepoError(err)
	}

	s.log(ctx, "CreateZone", "zone_id", stored.ID, "site_id", stored.SiteID).InfoContext(ctx, "zone created")
	return toZone(stored), nil
}

// ListZones enumerates zones, optionally scoped to one site.
func (s *LocationService) ListZones(ctx context.Context, principal Principal, siteID string) ([]Zone, error) {
	if s == nil || s.locations == nil {
		return nil, fmt.Errorf("location repository not configured")
	}

	models, err := s.locations.ListZones(ctx, siteID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]Zone, 0, len(models))
	for _, model := range models {
		out = append(out, toZone(model))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// DeleteZone removes a zone. Administrator only.
func (s *LocationService) DeleteZone(ctx context.Context, principal Principal, zoneID string) error {
	if s == nil || s.locations == nil {
		return fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.locations.DeleteZone(ctx, zoneID); err != nil {
		return mapRepoError(err)
	}
	s.log(ctx, "DeleteZone", "zone_id", zoneID).InfoContext(ctx, "zone deleted")
	return nil
}

// CreateArea registers an area within a zone. Administrator only.
func (s *LocationService) CreateArea(ctx context.Context, principal Principal, input AreaInput) (Area, error) {
	if s == nil || s.locations == nil {
		return Area{}, fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return Area{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.ZoneID) == "" {
		vErr.add("zone_id", "zone is required")
	}
	if vErr.HasErrors() {
		return Area{}, vErr
	}

	if _, err := s.locations.GetZone(ctx, input.ZoneID); err != nil {
		return Area{}, mapRepoError(err)
	}

	now := s.now()
	stored := persistence.Area{
		ID:          s.idGenerator(),
		ZoneID:      input.ZoneID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.locations.CreateArea(ctx, stored); err != nil {
		return Area{}, mapRepoError(err)
	}

	s.log(ctx, "CreateArea", "area_id", stored.ID, "zone_id", stored.ZoneID).InfoContext(ctx, "area created")
	return toArea(stored), nil
}

// UpdateArea changes area attributes. Administrator only.
func (s *LocationService) UpdateArea(ctx context.Context, principal Principal, areaID string, input AreaInput) (Area, error) {
	if s == nil || s.locations == nil {
		return Area{}, fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return Area{}, ErrUnauthorized
	}

	existing, err := s.locations.GetArea(ctx, areaID)
	if err != nil {
		return Area{}, mapRepoError(err)
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return Area{}, vErr
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Description = input.Description
	updated.UpdatedAt = s.now()

	if err := s.locations.UpdateArea(ctx, updated); err != nil {
		return Area{}, mapRepoError(err)
	}

	s.log(ctx, "UpdateArea", "area_id", areaID).InfoContext(ctx, "area updated")
	return toArea(updated), nil
}

// GetArea returns one area for any authenticated principal.
func (s *LocationService) GetArea(ctx context.Context, areaID string) (Area, error) {
	if s == nil || s.locations == nil {
		return Area{}, fmt.Errorf("location repository not configured")
	}
	stored, err := s.locations.GetArea(ctx, areaID)
	if err != nil {
		return Area{}, mapRepoError(err)
	}
	return toArea(stored), nil
}

// ListAreas enumerates areas, optionally scoped to one zone.
func (s *LocationService) ListAreas(ctx context.Context, principal Principal, zoneID string) ([]Area, error) {
	if s == nil || s.locations == nil {
		return nil, fmt.Errorf("location repository not configured")
	}

	models, err := s.locations.ListAreas(ctx, zoneID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	out := make([]Area, 0, len(models))
	for _, model := range models {
		out = append(out, toArea(model))
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// DeleteArea removes an area. Administrator only.
func (s *LocationService) DeleteArea(ctx context.Context, principal Principal, areaID string) error {
	if s == nil || s.locations == nil {
		return fmt.Errorf("location repository not configured")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.locations.DeleteArea(ctx, areaID); err != nil {
		return mapRepoError(err)
	}
	s.log(ctx, "DeleteArea", "area_id", areaID).InfoContext(ctx, "area deleted")
	return nil
}

// MintScanToken issues the signed token embedded in an area's printed code.
// Supervisors and administrators only.
func (s *LocationService) MintScanToken(ctx context.Context, principal Principal, areaID string) (string, error) {
	if s == nil || s.locations == nil || s.scanTokens == nil {
		return "", fmt.Errorf("location service not configured")
	}
	if !principal.CanSupervise() {
		return "", ErrUnauthorized
	}

	if _, err := s.locations.GetArea(ctx, areaID); err != nil {
		return "", mapRepoError(err)
	}

	token, err := s.scanTokens.Mint(areaID)
	if err != nil {
		return "", err
	}

	s.log(ctx, "MintScanToken", "area_id", areaID).InfoContext(ctx, "scan token minted")
	return token, nil
}

// ResolveScanToken verifies a scanned token and returns the referenced area.
// Available without authentication; the scanned code itself is the
// capability.
func (s *LocationService) ResolveScanToken(ctx context.Context, token string) (Area, error) {
	if s == nil || s.locations == nil || s.scanTokens == nil {
		return Area{}, fmt.Errorf("location service not configured")
	}

	areaID, err := s.scanTokens.Verify(token)
	if err != nil {
		return Area{}, err
	}

	stored, err := s.locations.GetArea(ctx, areaID)
	if err != nil {
		return Area{}, mapRepoError(err)
	}
	return toArea(stored), nil
}

func toSite(stored persistence.Site) Site {
	return Site{
		ID:        stored.ID,
		Name:      stored.Name,
		Address:   stored.Address,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}
}

func toZone(stored persistence.Zone) Zone {
	return Zone{
		ID:        stored.ID,
		SiteID:    stored.SiteID,
		Name:      stored.Name,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}
}

func toArea(stored persistence.Area) Area {
	return Area{
		ID:          stored.ID,
		ZoneID:      stored.ZoneID,
		Name:        stored.Name,
		Description: stored.Description,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}
}
