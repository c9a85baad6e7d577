package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cleanops/internal/application"
	"github.com/example/cleanops/internal/recurrence"
)

// JobHandler serves cleaning job templates and their recurrence schedules.
type JobHandler struct {
	jobs      *application.JobService
	responder responder
	logger    *slog.Logger
}

// NewJobHandler constructs a JobHandler.
func NewJobHandler(jobs *application.JobService, logger *slog.Logger) *JobHandler {
	logger = defaultLogger(logger)
	return &JobHandler{
		jobs:      jobs,
		responder: newResponder(logger),
		logger:    logger,
	}
}

type jobDTO struct {
	ID             string  `json:"id"`
	AreaID         string  `json:"area_id"`
	Title          string  `json:"title"`
	Notes          *string `json:"notes,omitempty"`
	Schedule       string  `json:"schedule"`
	SchedulePhrase string  `json:"schedule_phrase"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toJobDTO(job application.Job) jobDTO {
	return jobDTO{
		ID:             job.ID,
		AreaID:         job.AreaID,
		Title:          job.Title,
		Notes:          job.Notes,
		Schedule:       job.Schedule,
		SchedulePhrase: job.SchedulePhrase,
		CreatedAt:      job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      job.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type scheduleRequest struct {
	Frequency  string `json:"frequency"`
	Hour       int    `json:"hour"`
	Minute     int    `json:"minute"`
	Weekdays   []int  `json:"weekdays,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty"`
	Month      int    `json:"month,omitempty"`
}

func (req scheduleRequest) descriptor() recurrence.Descriptor {
	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, day := range req.Weekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}
	return recurrence.Descriptor{
		Frequency:  parseFrequency(req.Frequency),
		Hour:       req.Hour,
		Minute:     req.Minute,
		Weekdays:   weekdays,
		DayOfMonth: req.DayOfMonth,
		Month:      time.Month(req.Month),
	}
}

func parseFrequency(value string) recurrence.Frequency {
	switch value {
	case "daily":
		return recurrence.FrequencyDaily
	case "weekly":
		return recurrence.FrequencyWeekly
	case "monthly":
		return recurrence.FrequencyMonthly
	case "quarterly":
		return recurrence.FrequencyQuarterly
	case "annually":
		return recurrence.FrequencyAnnually
	default:
		return recurrence.FrequencyUnspecified
	}
}

type jobRequest struct {
	AreaID   string          `json:"area_id"`
	Title    string          `json:"title"`
	Notes    *string         `json:"notes"`
	Schedule scheduleRequest `json:"schedule"`
}

func (req jobRequest) input() application.JobInput {
	return application.JobInput{
		AreaID:     req.AreaID,
		Title:      req.Title,
		Notes:      req.Notes,
		Recurrence: req.Schedule.descriptor(),
	}
}

func (h *JobHandler) principal(w http.ResponseWriter, r *http.Request) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
	}
	return principal, ok
}

// List handles GET /jobs with an optional area_id query parameter.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	jobs, err := h.jobs.ListJobs(ctx, principal, r.URL.Query().Get("area_id"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]jobDTO, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobDTO(job))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string][]jobDTO{"jobs": out})
}

// Create handles POST /jobs.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.jobs.CreateJob(ctx, principal, req.input())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "JobHandler", "Create").With("job_id", created.ID).InfoContext(ctx, "job created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, toJobDTO(created))
}

// Get handles GET /jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	if _, ok := h.principal(w, r); !ok {
		return
	}

	job, err := h.jobs.GetJob(ctx, jobID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toJobDTO(job))
}

// Update handles PUT /jobs/{id}.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	updated, err := h.jobs.UpdateJob(ctx, principal, jobID, req.input())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toJobDTO(updated))
}

// Delete handles DELETE /jobs/{id}.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.jobs.DeleteJob(ctx, principal, jobID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
