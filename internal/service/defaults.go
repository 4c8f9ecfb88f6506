package service

import (
	"time"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
)

// Fallback datasets shown when the upstream API is unreachable: the
// dashboard degrades to last-known/default data instead of blocking.

func defaultWeeklySchedule() models.WeeklySchedule {
	return models.WeeklySchedule{
		"Monday": {
			{Day: "Monday", StartTime: "09:00", SubjectName: "OS", Room: "Hall A"},
			{Day: "Monday", StartTime: "10:00", SubjectName: "M3", Room: "Hall A"},
		},
		"Tuesday": {
			{Day: "Tuesday", StartTime: "09:00", SubjectName: "SS", Room: "TB 11"},
			{Day: "Tuesday", StartTime: "13:00", SubjectName: "Lab", Room: "Lab 1"},
		},
		"Wednesday": {
			{Day: "Wednesday", StartTime: "09:00", SubjectName: "DSA", Room: "TB 11"},
		},
		"Thursday": {
			{Day: "Thursday", StartTime: "10:00", SubjectName: "DSA", Room: "TB 11"},
		},
		"Friday": {
			{Day: "Friday", StartTime: "09:00", SubjectName: "M3", Room: "Hall A"},
		},
		"Saturday": {
			{Day: "Saturday", StartTime: "09:00", SubjectName: "PPL", Room: "TB 11"},
		},
	}
}

func defaultReports() map[models.ReportPeriod]models.AttendanceReport {
	return map[models.ReportPeriod]models.AttendanceReport{
		models.ReportWeekly: {
			Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			Trend:  []float64{100, 80, 100, 60, 90},
			Subjects: []models.SubjectReport{
				{Name: "OS", Total: 4, Present: 2},
				{Name: "M3", Total: 4, Present: 4},
			},
		},
		models.ReportMonthly: {
			Labels: []string{"W1", "W2", "W3", "W4"},
			Trend:  []float64{72, 68, 70, 75},
			Subjects: []models.SubjectReport{
				{Name: "OS", Total: 16, Present: 10},
				{Name: "M3", Total: 16, Present: 14},
			},
		},
		models.ReportOverall: {
			Labels: []string{"Aug", "Sep", "Oct", "Nov"},
			Trend:  []float64{70, 72, 74, 76},
			Subjects: []models.SubjectReport{
				{Name: "OS", Total: 40, Present: 24},
				{Name: "M3", Total: 40, Present: 38},
				{Name: "DELD", Total: 35, Present: 30},
			},
		},
	}
}

func defaultNotices(now time.Time) []models.Notice {
	return []models.Notice{
		{
			ID:        "welcome",
			Title:     "Welcome to Smart Attendance",
			Priority:  "low",
			CreatedAt: now,
		},
	}
}
