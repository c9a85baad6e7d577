package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/cleanops/internal/application"
)

// ReportHandler serves downloadable compliance reports.
type ReportHandler struct {
	reports   *application.ReportService
	responder responder
	logger    *slog.Logger
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports *application.ReportService, logger *slog.Logger) *ReportHandler {
	logger = defaultLogger(logger)
	return &ReportHandler{
		reports:   reports,
		responder: newResponder(logger),
		logger:    logger,
	}
}

// Compliance handles GET /reports/compliance?from=...&to=... and streams the
// summary workbook.
func (h *ReportHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		h.responder.handleServiceError(ctx, w, application.ErrUnauthorized)
		return
	}

	window, vErr := parseComplianceWindow(r)
	if vErr != nil {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	workbook, err := h.reports.BuildComplianceWorkbook(ctx, principal, window)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	filename := fmt.Sprintf("compliance_%s_%s.xlsx",
		window.From.UTC().Format("20060102"),
		window.To.UTC().Format("20060102"),
	)

	handlerLogger(ctx, h.logger, "ReportHandler", "Compliance").With(
		"filename", filename,
		"bytes", len(workbook),
	).InfoContext(ctx, "compliance report generated")

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		handlerLogger(ctx, h.logger, "ReportHandler", "Compliance").ErrorContext(ctx, "failed to write workbook", "error", err)
	}
}

func parseComplianceWindow(r *http.Request) (application.ComplianceWindow, *application.ValidationError) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		vErr.FieldErrors["from"] = "from must be an RFC 3339 timestamp"
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		vErr.FieldErrors["to"] = "to must be an RFC 3339 timestamp"
	}
	if len(vErr.FieldErrors) > 0 {
		return application.ComplianceWindow{}, vErr
	}
	if to.Before(from) {
		vErr.FieldErrors["to"] = "to must not precede from"
		return application.ComplianceWindow{}, vErr
	}

	return application.ComplianceWindow{From: from, To: to}, nil
}
