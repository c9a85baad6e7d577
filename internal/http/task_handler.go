package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cleanops/internal/application"
)

// TaskHandler serves the task lifecycle: assignment, listing, completion and
// verification.
type TaskHandler struct {
	tasks     *application.TaskService
	responder responder
	logger    *slog.Logger
}

// NewTaskHandler constructs a TaskHandler.
func NewTaskHandler(tasks *application.TaskService, logger *slog.Logger) *TaskHandler {
	logger = defaultLogger(logger)
	return &TaskHandler{
		tasks:     tasks,
		responder: newResponder(logger),
		logger:    logger,
	}
}

type taskDTO struct {
	ID          string  `json:"id"`
	JobID       string  `json:"job_id"`
	AreaID      string  `json:"area_id"`
	AssigneeID  string  `json:"assignee_id"`
	Status      string  `json:"status"`
	DueAt       string  `json:"due_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
	VerifiedAt  *string `json:"verified_at,omitempty"`
	VerifierID  *string `json:"verifier_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toTaskDTO(task application.Task) taskDTO {
	return taskDTO{
		ID:          task.ID,
		JobID:       task.JobID,
		AreaID:      task.AreaID,
		AssigneeID:  task.AssigneeID,
		Status:      string(task.Status),
		DueAt:       task.DueAt.UTC().Format(time.RFC3339),
		CompletedAt: formatOptionalTime(task.CompletedAt),
		VerifiedAt:  formatOptionalTime(task.VerifiedAt),
		VerifierID:  task.VerifierID,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339)
	return &formatted
}

type warningDTO struct {
	Type       string `json:"type"`
	AssigneeID string `json:"assignee_id"`
	Weekday    string `json:"weekday"`
}

func toWarningDTOs(warnings []application.AssignmentWarning) []warningDTO {
	out := make([]warningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, warningDTO{
			Type:       warning.Type,
			AssigneeID: warning.AssigneeID,
			Weekday:    warning.Weekday.String(),
		})
	}
	return out
}

type assignTaskRequest struct {
	JobID      string `json:"job_id"`
	AssigneeID string `json:"assignee_id"`
	DueAt      string `json:"due_at"`
}

type assignTaskResponse struct {
	Task     taskDTO      `json:"task"`
	Warnings []warningDTO `json:"warnings,omitempty"`
}

func (h *TaskHandler) principal(w http.ResponseWriter, r *http.Request) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrUnauthorized)
	}
	return principal, ok
}

// Assign handles POST /tasks.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req assignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	dueAt, err := time.Parse(time.RFC3339, req.DueAt)
	if err != nil {
		h.responder.handleServiceError(ctx, w, &application.ValidationError{
			FieldErrors: map[string]string{"due_at": "due_at must be an RFC 3339 timestamp"},
		})
		return
	}

	task, warnings, err := h.tasks.AssignTask(ctx, application.AssignTaskParams{
		Principal:  principal,
		JobID:      req.JobID,
		AssigneeID: req.AssigneeID,
		DueAt:      dueAt,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "TaskHandler", "Assign").With(
		"task_id", task.ID,
		"assignee_id", task.AssigneeID,
		"warnings", len(warnings),
	).InfoContext(ctx, "task assigned")
	h.responder.writeJSON(ctx, w, http.StatusCreated, assignTaskResponse{
		Task:     toTaskDTO(task),
		Warnings: toWarningDTOs(warnings),
	})
}

// List handles GET /tasks with optional area_id, assignee_id, status,
// due_after and due_before query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	query := application.TaskQuery{
		Principal:  principal,
		AreaID:     r.URL.Query().Get("area_id"),
		AssigneeID: r.URL.Query().Get("assignee_id"),
		Status:     application.TaskStatus(r.URL.Query().Get("status")),
	}

	for param, target := range map[string]**time.Time{
		"due_after":  &query.DueAfter,
		"due_before": &query.DueBefore,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.responder.handleServiceError(ctx, w, &application.ValidationError{
				FieldErrors: map[string]string{param: param + " must be an RFC 3339 timestamp"},
			})
			return
		}
		*target = &parsed
	}

	tasks, err := h.tasks.ListTasks(ctx, query)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	out := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskDTO(task))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, map[string][]taskDTO{"tasks": out})
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request, taskID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(ctx, principal, taskID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toTaskDTO(task))
}

// Complete handles POST /tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request, taskID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.CompleteTask(ctx, principal, taskID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "TaskHandler", "Complete").With("task_id", taskID).InfoContext(ctx, "task completed")
	h.responder.writeJSON(ctx, w, http.StatusOK, toTaskDTO(task))
}

// Verify handles POST /tasks/{id}/verify.
func (h *TaskHandler) Verify(w http.ResponseWriter, r *http.Request, taskID string) {
	ctx := r.Context()
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.VerifyTask(ctx, principal, taskID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	handlerLogger(ctx, h.logger, "TaskHandler", "Verify").With("task_id", taskID).InfoContext(ctx, "task verified")
	h.responder.writeJSON(ctx, w, http.StatusOK, toTaskDTO(task))
}
