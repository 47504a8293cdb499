package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
	"github.com/noah-isme/hrms-lite/pkg/export"
)

// ExportFormat names a downloadable rendering of the attendance view.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

const (
	colDate      = "Date"
	colEmployee  = "Employee ID"
	colName      = "Employee Name"
	colStatus    = "Status"
	exportTitle  = "Attendance Report"
	exportSheet  = "Attendance"
	exportPrefix = "attendance"
)

type attendanceViewer interface {
	View(ctx context.Context, query AttendanceQuery) (*models.AttendanceView, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the filtered attendance view into downloadable files.
type ExportService struct {
	viewer attendanceViewer
	csv    csvRenderer
	pdf    pdfRenderer
	xlsx   xlsxRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(viewer attendanceViewer, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, xlsx xlsxRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{viewer: viewer, csv: csv, pdf: pdf, xlsx: xlsx, logger: logger}
}

// ParseExportFormat validates a format query value. Empty means CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	case ExportFormatXLSX:
		return ExportFormatXLSX, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "format must be one of: csv, pdf, xlsx")
	}
}

// Attendance renders the same records and stats the attendance page shows.
func (s *ExportService) Attendance(ctx context.Context, query AttendanceQuery, format ExportFormat) (*ExportFile, error) {
	view, err := s.viewer.View(ctx, query)
	if err != nil {
		return nil, err
	}
	dataset := attendanceDataset(view)

	file := &ExportFile{Filename: exportFilename(view.Criteria, format)}
	switch format {
	case ExportFormatCSV:
		file.ContentType = "text/csv; charset=utf-8"
		file.Body, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Body, err = s.pdf.Render(dataset, exportTitle)
	case ExportFormatXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Body, err = s.xlsx.Render(dataset, exportSheet)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		s.logger.Error("attendance export failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return file, nil
}

func attendanceDataset(view *models.AttendanceView) export.Dataset {
	names := make(map[string]string, len(view.Employees))
	for _, e := range view.Employees {
		names[e.EmployeeID] = e.FullName
	}

	dataset := export.Dataset{
		Headers: []string{colDate, colEmployee, colName, colStatus},
		Rows:    make([]map[string]string, 0, len(view.Records)),
	}
	for _, r := range view.Records {
		name := r.EmployeeName
		if name == "" {
			name = names[r.EmployeeID]
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			colDate:     r.Date,
			colEmployee: r.EmployeeID,
			colName:     name,
			colStatus:   string(r.Status),
		})
	}

	if view.Stats != nil {
		dataset.Summary = []export.SummaryLine{
			{Label: "Total", Value: strconv.Itoa(view.Stats.Total)},
			{Label: "Present", Value: strconv.Itoa(view.Stats.Present)},
			{Label: "Absent", Value: strconv.Itoa(view.Stats.Absent)},
			{Label: "Attendance", Value: strconv.Itoa(view.Stats.Percentage) + "%"},
		}
	}
	return dataset
}

func exportFilename(criteria models.FilterCriteria, format ExportFormat) string {
	parts := []string{exportPrefix}
	if criteria.EmployeeID != "" {
		parts = append(parts, sanitizeFilename(criteria.EmployeeID))
	}
	if criteria.StartDate != "" || criteria.EndDate != "" {
		parts = append(parts, orDefault(criteria.StartDate, "start")+"_"+orDefault(criteria.EndDate, "end"))
	}
	return strings.Join(parts, "_") + "." + string(format)
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
