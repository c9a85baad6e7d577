package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cleanops/internal/application"
	"github.com/example/cleanops/internal/availability"
	"github.com/example/cleanops/internal/routing"
)

// StaffHandler serves workforce account management and weekly availability.
type StaffHandler struct {
	staff     *application.StaffService
	responder responder
	logger    *slog.Logger
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(staff *application.StaffService, logger *slog.Logger) *StaffHandler {
	logger = defaultLogger(logger)
	return &StaffHandler{
		staff:     staff,
		responder: newResponder(logger),
		logger:    logger,
	}
}

type staffDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Disabled    bool   `json:"disabled"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toStaffDTO(staff application.Staff) staffDTO {
	return staffDTO{
		ID:          staff.ID,
		Email:       staff.Email,
		DisplayName: staff.DisplayName,
		Role:        staff.Role.String(),
		Disabled:    staff.Disabled,
		CreatedAt:   staff.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   staff.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type staffRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Password    string `json:"password"`
}

func (req staffRequest) input() application.StaffInput {
	return application.StaffInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        routing.ParseRole(req.Role),
		Password:    req.Password,
	}
}

type availabilityDayDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

// availabilityWeekDTO always carries seven entries ordered Sunday through
// Saturday.
type availabilityWeekDTO struct {
	Days [7]availabilityDayDTO `json:"days"`
}

func toWeekDTO(week availability.Week) availabilityWeekDTO {
	var dto availabilityWeekDTO
	for day, entry := range week {
		dto.Days[day] = availabilityDayDTO{
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			IsActive:  entry.IsActive,
		}
	}
	return dto
}

func (dto availabilityWeekDTO) week() availability.Week {
	var week availability.Week
	for day, entry := range dto.Days {
		week[day] = availability.Day{
			StartTime: entry.StartTime,
			EndTime:   entry.EndTime,
			IsActive:  entry.IsActive,
		}
	}
	return week
}

// List handles GET /staff.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	listed, err := h.staff.ListStaff(ctx, principal)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]staffDTO, 0, len(listed))
	for _, staff := range listed {
		out = append(out, toStaffDTO(staff))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string][]staffDTO{"staff": out})
}

// Create handles POST /staff.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.staff.CreateStaff(ctx, principal, req.input())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "StaffHandler", "Create").With("staff_id", created.ID).InfoContext(ctx, "staff created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, toStaffDTO(created))
}

// Get handles GET /staff/{id}.
func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request, staffID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	staff, err := h.staff.GetStaff(ctx, principal, staffID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toStaffDTO(staff))
}

// Update handles PUT /staff/{id}.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request, staffID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	updated, err := h.staff.UpdateStaff(ctx, principal, staffID, req.input())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toStaffDTO(updated))
}

// Delete handles DELETE /staff/{id}.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request, staffID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	if err := h.staff.DeleteStaff(ctx, principal, staffID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// GetAvailability handles GET /staff/{id}/availability.
func (h *StaffHandler) GetAvailability(w http.ResponseWriter, r *http.Request, staffID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	week, err := h.staff.GetWeeklyAvailability(ctx, principal, staffID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toWeekDTO(week))
}

// SaveAvailability handles PUT /staff/{id}/availability.
func (h *StaffHandler) SaveAvailability(w http.ResponseWriter, r *http.Request, staffID string) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	var dto availabilityWeekDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.staff.SaveWeeklyAvailability(ctx, principal, staffID, dto.week()); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "StaffHandler", "SaveAvailability").With("staff_id", staffID).InfoContext(ctx, "availability saved")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
