package dto

import "github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"

// StudentDashboard is the full student view projection.
type StudentDashboard struct {
	Day           models.DaySchedule                              `json:"day"`
	NextUp        *models.ScheduleItem                            `json:"next_up,omitempty"`
	Reports       map[models.ReportPeriod]models.AttendanceReport `json:"reports"`
	History       []models.AttendanceRecord                       `json:"history"`
	Activity      []models.ActivityEntry                          `json:"activity"`
	Notifications []models.Notification                           `json:"notifications"`
	Notices       []models.Notice                                 `json:"notices"`
	LowAttendance []string                                        `json:"low_attendance,omitempty"`
	Toasts        []string                                        `json:"toasts,omitempty"`
}

// FacultyDashboard is the full faculty view projection.
type FacultyDashboard struct {
	Day            models.DaySchedule        `json:"day"`
	Roster         []models.Student          `json:"roster"`
	Stats          models.RosterStats        `json:"stats"`
	History        []models.AttendanceRecord `json:"history"`
	Notifications  []models.Notification     `json:"notifications"`
	Toasts         []string                  `json:"toasts,omitempty"`
	AttendanceOpen bool                      `json:"attendance_open"`
	CurrentClass   string                    `json:"current_class,omitempty"`
}

// NoticePage is one page of notices.
type NoticePage struct {
	Notices []models.Notice `json:"notices"`
}

// Preferences mirrors the persisted per-user settings flags.
type Preferences struct {
	DarkMode   bool `json:"dark_mode"`
	EmailNotif bool `json:"email_notif"`
}
