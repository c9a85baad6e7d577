package http

import (
	"log/slog"
	"net/http"

	"github.com/example/cleanops/internal/application"
	"github.com/example/cleanops/internal/routing"
)

// ScanHandler resolves scanned area codes into role-specific navigation
// targets. Scanning works without authentication; a valid session upgrades
// the destination to the caller's role view.
type ScanHandler struct {
	locations *application.LocationService
	sessions  SessionValidator
	responder responder
	logger    *slog.Logger
}

// NewScanHandler constructs a ScanHandler.
func NewScanHandler(locations *application.LocationService, sessions SessionValidator, logger *slog.Logger) *ScanHandler {
	logger = defaultLogger(logger)
	return &ScanHandler{
		locations: locations,
		sessions:  sessions,
		responder: newResponder(logger),
		logger:    logger,
	}
}

type scanResponse struct {
	View string  `json:"view"`
	Area areaDTO `json:"area"`
}

// Resolve handles GET /scan/{token}.
func (h *ScanHandler) Resolve(w http.ResponseWriter, r *http.Request, token string) {
	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "ScanHandler", "Resolve")

	area, err := h.locations.ResolveScanToken(ctx, token)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	// An invalid or expired session does not fail the scan; the visitor is
	// simply routed anonymously.
	var identity *routing.Identity
	if sessionToken := extractSessionToken(r); sessionToken != "" && h.sessions != nil {
		principal, err := h.sessions.ValidateSession(ctx, sessionToken)
		if err == nil {
			identity = &routing.Identity{
				StaffID:    principal.StaffID,
				Role:       principal.Role,
				HasProfile: true,
			}
		}
	}

	target := routing.Resolve(identity, area.ID)
	logger.With("area_id", area.ID, "view", target.View.String()).InfoContext(ctx, "scan resolved")

	h.responder.writeJSON(ctx, w, http.StatusOK, scanResponse{
		View: target.View.String(),
		Area: toAreaDTO(area),
	})
}
