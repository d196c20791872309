package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/scoring"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
	"github.com/trainbase/evaluation-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportResult carries a rendered export ready to stream to the client.
type ReportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ReportService renders group evaluation reports. Exports are synchronous;
// a group's evaluation set is small enough to render within a request.
type ReportService struct {
	evaluations evaluationLister
	groups      groupReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(evaluations evaluationLister, groups groupReader, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		evaluations: evaluations,
		groups:      groups,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

var reportHeaders = []string{"Student", "Session", "Date", "Rating", "Score", "Attendance", "Engagement", "Flags"}

// GroupReport renders all evaluations of a group in the requested format.
func (s *ReportService) GroupReport(ctx context.Context, groupID string, format ReportFormat) (*ReportResult, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	evaluations, err := s.evaluations.List(ctx, models.EvaluationFilter{GroupID: groupID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}

	dataset := buildReportDataset(evaluations)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case ReportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &ReportResult{
			Data:        data,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("evaluations_%s_%s.csv", group.Name, stamp),
		}, nil
	default:
		data, err := s.pdf.Render(dataset, fmt.Sprintf("Evaluation Report - %s", group.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
		}
		return &ReportResult{
			Data:        data,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("evaluations_%s_%s.pdf", group.Name, stamp),
		}, nil
	}
}

func buildReportDataset(evaluations []models.StudentEvaluation) export.Dataset {
	rows := make([]map[string]string, 0, len(evaluations))
	for i := range evaluations {
		eval := &evaluations[i]
		rows = append(rows, map[string]string{
			"Student":    eval.StudentID,
			"Session":    eval.SessionID,
			"Date":       eval.CreatedAt.Format("2006-01-02"),
			"Rating":     strconv.Itoa(eval.OverallRating),
			"Score":      strconv.Itoa(scoring.Compute(eval)),
			"Attendance": string(eval.AttendanceStatus),
			"Engagement": string(eval.EngagementLevel),
			"Flags":      formatFlags(eval),
		})
	}
	return export.Dataset{Headers: reportHeaders, Rows: rows}
}

func formatFlags(eval *models.StudentEvaluation) string {
	var flags []string
	if eval.AtRisk {
		flags = append(flags, "at_risk")
	}
	if eval.NeedsAttention {
		flags = append(flags, "needs_attention")
	}
	if eval.Excelling {
		flags = append(flags, "excelling")
	}
	return strings.Join(flags, " ")
}
