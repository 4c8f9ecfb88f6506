package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/export"
)

// ExportService renders dashboard data into downloadable documents.
type ExportService struct {
	dashboards *DashboardService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService instantiates ExportService.
func NewExportService(dashboards *DashboardService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		dashboards: dashboards,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		now:        time.Now,
	}
}

// StudentHistoryCSV renders the student's attendance history table.
func (s *ExportService) StudentHistoryCSV(studentID string) ([]byte, string, error) {
	history := s.dashboards.StudentStateFor(studentID).History()

	rows := make([][]string, 0, len(history))
	for _, record := range history {
		rows = append(rows, []string{record.Date, record.Subject, string(record.Status)})
	}

	data, err := s.csv.Render(export.Dataset{
		Headers: []string{"Date", "Subject", "Status"},
		Rows:    rows,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render history csv")
	}
	return data, "attendance_history.csv", nil
}

// ClassRosterCSV renders the faculty roster with today's marks.
func (s *ExportService) ClassRosterCSV(facultyID string) ([]byte, string, error) {
	state := s.dashboards.FacultyStateFor(facultyID)
	roster := state.Roster()
	date := s.now().Format("2006-01-02")

	rows := make([][]string, 0, len(roster))
	for _, student := range roster {
		status := string(models.ScheduleStatusAbsent)
		if student.PresentToday {
			status = string(models.ScheduleStatusPresent)
		}
		rows = append(rows, []string{student.RollNo, student.Name, status, date})
	}

	data, err := s.csv.Render(export.Dataset{
		Headers: []string{"RollNo", "Name", "Status", "Date"},
		Rows:    rows,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render roster csv")
	}

	filename := fmt.Sprintf("class_attendance_%s.csv", date)
	return data, filename, nil
}

// StudentReportPDF renders the per-subject attendance report for one period.
func (s *ExportService) StudentReportPDF(studentID string, period models.ReportPeriod) ([]byte, string, error) {
	report, ok := s.dashboards.StudentStateFor(studentID).Report(period)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no %s report available", period))
	}

	rows := make([][]string, 0, len(report.Subjects))
	for _, subject := range report.Subjects {
		rows = append(rows, []string{
			subject.Name,
			fmt.Sprintf("%d", subject.Present),
			fmt.Sprintf("%d", subject.Total),
			fmt.Sprintf("%d%%", subject.Percent()),
		})
	}

	data, err := s.pdf.Render(export.Dataset{
		Headers: []string{"Subject", "Present", "Total", "Percentage"},
		Rows:    rows,
	}, fmt.Sprintf("Attendance Report (%s)", period))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render report pdf")
	}

	filename := fmt.Sprintf("attendance_report_%s.pdf", period)
	return data, filename, nil
}
