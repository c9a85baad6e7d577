package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cleanops/internal/application"
)

// LocationHandler serves the site, zone and area hierarchy plus scan token
// minting.
type LocationHandler struct {
	locations *application.LocationService
	responder responder
	logger    *slog.Logger
}

// NewLocationHandler constructs a LocationHandler.
func NewLocationHandler(locations *application.LocationService, logger *slog.Logger) *LocationHandler {
	logger = defaultLogger(logger)
	return &LocationHandler{
		locations: locations,
		responder: newResponder(logger),
		logger:    logger,
	}
}

type siteDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toSiteDTO(site application.Site) siteDTO {
	return siteDTO{
		ID:        site.ID,
		Name:      site.Name,
		Address:   site.Address,
		CreatedAt: site.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: site.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type zoneDTO struct {
	ID        string `json:"id"`
	SiteID    string `json:"site_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toZoneDTO(zone application.Zone) zoneDTO {
	return zoneDTO{
		ID:        zone.ID,
		SiteID:    zone.SiteID,
		Name:      zone.Name,
		CreatedAt: zone.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: zone.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type areaDTO struct {
	ID          string  `json:"id"`
	ZoneID      string  `json:"zone_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toAreaDTO(area application.Area) areaDTO {
	return areaDTO{
		ID:          area.ID,
		ZoneID:      area.ZoneID,
		Name:        area.Name,
		Description: area.Description,
		CreatedAt:   area.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   area.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type siteRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type zoneRequest struct {
	SiteID string `json:"site_id"`
	Name   string `json:"name"`
}

type areaRequest struct {
	ZoneID      string  `json:"zone_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *LocationHandler) principal(w http.ResponseWriter, r *http.Request) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
	}
	return principal, ok
}

// ListSites handles GET /sites.
func (h *LocationHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	sites, err := h.locations.ListSites(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]siteDTO, 0, len(sites))
	for _, site := range sites {
		out = append(out, toSiteDTO(site))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string][]siteDTO{"sites": out})
}

// CreateSite handles POST /sites.
func (h *LocationHandler) CreateSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req siteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.locations.CreateSite(ctx, principal, application.SiteInput{Name: req.Name, Address: req.Address})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, toSiteDTO(created))
}

// DeleteSite handles DELETE /sites/{id}.
func (h *LocationHandler) DeleteSite(w http.ResponseWriter, r *http.Request, siteID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.locations.DeleteSite(ctx, principal, siteID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// ListZones handles GET /zones with an optional site_id query parameter.
func (h *LocationHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	zones, err := h.locations.ListZones(ctx, principal, r.URL.Query().Get("site_id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]zoneDTO, 0, len(zones))
	for _, zone := range zones {
		out = append(out, toZoneDTO(zone))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string][]zoneDTO{"zones": out})
}

// CreateZone handles POST /zones.
func (h *LocationHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.locations.CreateZone(ctx, principal, application.ZoneInput{SiteID: req.SiteID, Name: req.Name})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, toZoneDTO(created))
}

// DeleteZone handles DELETE /zones/{id}.
func (h *LocationHandler) DeleteZone(w http.ResponseWriter, r *http.Request, zoneID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.locations.DeleteZone(ctx, principal, zoneID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// ListAreas handles GET /areas with an optional zone_id query parameter.
func (h *LocationHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	areas, err := h.locations.ListAreas(ctx, principal, r.URL.Query().Get("zone_id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]areaDTO, 0, len(areas))
	for _, area := range areas {
		out = append(out, toAreaDTO(area))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string][]areaDTO{"areas": out})
}

// CreateArea handles POST /areas.
func (h *LocationHandler) CreateArea(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.locations.CreateArea(ctx, principal, application.AreaInput{
		ZoneID:      req.ZoneID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, toAreaDTO(created))
}

// GetArea handles GET /areas/{id}.
func (h *LocationHandler) GetArea(w http.ResponseWriter, r *http.Request, areaID string) {
	ctx := r.Context()
	if _, ok := h.principal(w, r); !ok {
		return
	}

	area, err := h.locations.GetArea(ctx, areaID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toAreaDTO(area))
}

// UpdateArea handles PUT /areas/{id}.
func (h *LocationHandler) UpdateArea(w http.ResponseWriter, r *http.Request, areaID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req areaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	updated, err := h.locations.UpdateArea(ctx, principal, areaID, application.AreaInput{
		ZoneID:      req.ZoneID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toAreaDTO(updated))
}

// DeleteArea handles DELETE /areas/{id}.
func (h *LocationHandler) DeleteArea(w http.ResponseWriter, r *http.Request, areaID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.locations.DeleteArea(ctx, principal, areaID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// MintScanToken handles POST /areas/{id}/scan-token.
func (h *LocationHandler) MintScanToken(w http.ResponseWriter, r *http.Request, areaID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	token, err := h.locations.MintScanToken(ctx, principal, areaID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "LocationHandler", "MintScanToken").With("area_id", areaID).InfoContext(ctx, "scan token minted")
	h.responder.writeJSON(ctx, w, http.StatusCreated, map[string]string{"token": token})
}
