package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
)

func newExportFixture(t *testing.T) (*ExportService, *DashboardService) {
	t.Helper()
	schedule := NewScheduleService(config.ScheduleConfig{}, nil)
	dash := NewDashboardService(offlineAPI{}, schedule, nil, config.BoundsConfig{}, time.Minute, nil)
	return NewExportService(dash, nil), dash
}

func TestExportStudentHistoryCSV(t *testing.T) {
	svc, dash := newExportFixture(t)
	dash.StudentStateFor("stu-1").SetReports(nil, []models.AttendanceRecord{
		{Date: "2024-01-02", Subject: "DSA", Status: models.ScheduleStatusPresent},
		{Date: "2024-01-01", Subject: `Operating "OS" Systems`, Status: models.ScheduleStatusAbsent},
	})

	data, filename, err := svc.StudentHistoryCSV("stu-1")
	require.NoError(t, err)
	assert.Equal(t, "attendance_history.csv", filename)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Subject,Status", lines[0])
	assert.Equal(t, `"2024-01-02","DSA","Present"`, lines[1])
	// Embedded quotes are doubled.
	assert.Equal(t, `"2024-01-01","Operating ""OS"" Systems","Absent"`, lines[2])
	// No trailing newline.
	assert.False(t, strings.HasSuffix(string(data), "\n"))
}

func TestExportStudentHistoryCSVEmpty(t *testing.T) {
	svc, _ := newExportFixture(t)

	data, _, err := svc.StudentHistoryCSV("stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Date,Subject,Status", string(data))
}

func TestExportClassRosterCSV(t *testing.T) {
	svc, dash := newExportFixture(t)
	state := dash.FacultyStateFor("fac-1")
	state.SetRoster([]models.Student{
		{ID: "s1", RollNo: "CS-101", Name: "Asha Rao"},
		{ID: "s2", RollNo: "CS-102", Name: "Vikram Jha"},
	})
	require.NoError(t, state.SetStudent("s2", true))

	data, filename, err := svc.ClassRosterCSV("fac-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "class_attendance_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "RollNo,Name,Status,Date", lines[0])
	assert.Contains(t, lines[1], `"CS-101","Asha Rao","Absent"`)
	assert.Contains(t, lines[2], `"CS-102","Vikram Jha","Present"`)
}

func TestExportStudentReportPDF(t *testing.T) {
	svc, dash := newExportFixture(t)
	dash.StudentStateFor("stu-1").SetReports(map[models.ReportPeriod]models.AttendanceReport{
		models.ReportWeekly: {
			Labels:   []string{"Mon", "Tue"},
			Trend:    []float64{80, 90},
			Subjects: []models.SubjectReport{{Name: "DSA", Total: 10, Present: 9}},
		},
	}, nil)

	data, filename, err := svc.StudentReportPDF("stu-1", models.ReportWeekly)
	require.NoError(t, err)
	assert.Equal(t, "attendance_report_weekly.pdf", filename)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestExportStudentReportPDFMissingPeriod(t *testing.T) {
	svc, _ := newExportFixture(t)

	_, _, err := svc.StudentReportPDF("stu-1", models.ReportMonthly)
	require.Error(t, err)
}
