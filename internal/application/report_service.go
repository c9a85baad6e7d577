package application

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// ComplianceSource provides the aggregated rows the report is built from.
type ComplianceSource interface {
	ComplianceSummary(ctx context.Context, principal Principal, window ComplianceWindow) ([]ComplianceRow, error)
}

// ReportService renders compliance summaries into downloadable workbooks.
type ReportService struct {
	source ComplianceSource
	logger *slog.Logger
}

// NewReportService wires dependencies for report generation.
func NewReportService(source ComplianceSource, logger *slog.Logger) *ReportService {
	return &ReportService{source: source, logger: defaultLogger(logger)}
}

const complianceSheet = "Compliance"

// BuildComplianceWorkbook produces an .xlsx workbook with one row per area.
// Authorization is delegated to the underlying summary query.
func (s *ReportService) BuildComplianceWorkbook(ctx context.Context, principal Principal, window ComplianceWindow) ([]byte, error) {
	if s == nil || s.source == nil {
		return nil, fmt.Errorf("compliance source not configured")
	}

	rows, err := s.source.ComplianceSummary(ctx, principal, window)
	if err != nil {
		return nil, err
	}

	workbook := excelize.NewFile()
	defer func() {
		if cerr := workbook.Close(); cerr != nil {
			serviceLogger(ctx, s.logger, "ReportService", "BuildComplianceWorkbook").ErrorContext(ctx, "failed to close workbook", "error", cerr)
		}
	}()

	index, err := workbook.NewSheet(complianceSheet)
	if err != nil {
		return nil, err
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []any{"Area", "Pending", "Completed", "Verified", "Total", "Completion rate"}
	if err := workbook.SetSheetRow(complianceSheet, "A1", &headers); err != nil {
		return nil, err
	}

	for i, row := range rows {
		name := row.AreaName
		if name == "" {
			name = row.AreaID
		}
		cells := []any{name, row.Pending, row.Completed, row.Verified, row.Total(), row.CompletionRate()}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(complianceSheet, cell, &cells); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return nil, err
	}

	serviceLogger(ctx, s.logger, "ReportService", "BuildComplianceWorkbook", "row_count", len(rows)).InfoContext(ctx, "compliance workbook built")
	return buf.Bytes(), nil
}
