package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
)

// lowAttendanceThreshold is the percentage below which a subject is
// flagged on the student dashboard.
const lowAttendanceThreshold = 75

// StudentState is the explicit state container behind one student's
// dashboard. All dashboard mutations, whether from the verification
// controller or from live events, go through its methods; the lists are
// FIFO-bounded with the oldest entry evicted first.
type StudentState struct {
	mu sync.Mutex

	weekly        models.WeeklySchedule
	today         models.DaySchedule
	reports       map[models.ReportPeriod]models.AttendanceReport
	history       []models.AttendanceRecord
	activity      []models.ActivityEntry
	notifications []models.Notification
	notices       []models.Notice
	toasts        []string

	bounds   config.BoundsConfig
	token    string
	loadedAt time.Time
}

// NewStudentState builds an empty container with the given list caps.
func NewStudentState(bounds config.BoundsConfig) *StudentState {
	return &StudentState{
		reports: make(map[models.ReportPeriod]models.AttendanceReport),
		bounds:  normalizeBounds(bounds),
	}
}

func normalizeBounds(bounds config.BoundsConfig) config.BoundsConfig {
	if bounds.HistoryCap <= 0 {
		bounds.HistoryCap = 50
	}
	if bounds.ActivityCap <= 0 {
		bounds.ActivityCap = 10
	}
	if bounds.NotificationCap <= 0 {
		bounds.NotificationCap = 20
	}
	return bounds
}

// SetTimetable replaces the weekly timetable and today's resolved view.
// Item statuses start Pending; the previous day view is discarded.
func (s *StudentState) SetTimetable(weekly models.WeeklySchedule, today models.DaySchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekly = weekly
	s.today = today
}

// MarkPresent flips the first pending slot for the subject to Present and
// records the mark in history, activity and notifications. The transition
// is one-way: an already marked slot is left untouched.
func (s *StudentState) MarkPresent(subject string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := false
	for i := range s.today.Items {
		if s.today.Items[i].Subject == subject && s.today.Items[i].Status == models.ScheduleStatusPending {
			s.today.Items[i].Status = models.ScheduleStatusPresent
			marked = true
			break
		}
	}

	timeStr := now.Format("15:04")
	s.history = pushBounded(s.history, models.AttendanceRecord{
		Date:    now.Format("2006-01-02"),
		Subject: subject,
		Status:  models.ScheduleStatusPresent,
	}, s.bounds.HistoryCap)
	s.activity = pushBounded(s.activity, models.ActivityEntry{
		Time:    timeStr,
		Message: fmt.Sprintf("Marked Present in %s", subject),
	}, s.bounds.ActivityCap)
	s.notifications = pushBounded(s.notifications, models.Notification{
		Time:    now.Format("2006-01-02"),
		Message: fmt.Sprintf("%s marked present at %s", subject, timeStr),
	}, s.bounds.NotificationCap)

	return marked
}

// PushActivity prepends a feed entry, evicting the oldest over the cap.
func (s *StudentState) PushActivity(entry models.ActivityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = pushBounded(s.activity, entry, s.bounds.ActivityCap)
}

// PushNotification prepends a bell entry, evicting the oldest over the cap.
func (s *StudentState) PushNotification(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = pushBounded(s.notifications, n, s.bounds.NotificationCap)
}

// PushToast queues a transient toast for the next dashboard poll.
func (s *StudentState) PushToast(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = pushBounded(s.toasts, message, s.bounds.NotificationCap)
}

// ClearNotifications empties the bell dropdown.
func (s *StudentState) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = nil
}

// SetNotices replaces the notice list after a refetch.
func (s *StudentState) SetNotices(notices []models.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = notices
}

// SetReports replaces the aggregate reports and history baseline.
func (s *StudentState) SetReports(reports map[models.ReportPeriod]models.AttendanceReport, history []models.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reports != nil {
		s.reports = reports
	}
	if history != nil {
		if len(history) > s.bounds.HistoryCap {
			history = history[:s.bounds.HistoryCap]
		}
		s.history = history
	}
}

// LowAttendance lists subjects below the warning threshold in the
// overall report.
func (s *StudentState) LowAttendance() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var low []string
	for _, sub := range s.reports[models.ReportOverall].Subjects {
		if sub.Percent() < lowAttendanceThreshold {
			low = append(low, sub.Name)
		}
	}
	return low
}

// snapshot copies the container under the lock; toasts are drained.
func (s *StudentState) snapshot() (models.DaySchedule, map[models.ReportPeriod]models.AttendanceReport, []models.AttendanceRecord, []models.ActivityEntry, []models.Notification, []models.Notice, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.today
	day.Items = append([]models.ScheduleItem(nil), s.today.Items...)
	reports := make(map[models.ReportPeriod]models.AttendanceReport, len(s.reports))
	for k, v := range s.reports {
		reports[k] = v
	}
	history := append([]models.AttendanceRecord(nil), s.history...)
	activity := append([]models.ActivityEntry(nil), s.activity...)
	notifications := append([]models.Notification(nil), s.notifications...)
	notices := append([]models.Notice(nil), s.notices...)
	toasts := s.toasts
	s.toasts = nil
	return day, reports, history, activity, notifications, notices, toasts
}

// annotate re-marks active/next in place for the given time.
func (s *StudentState) annotate(schedule *ScheduleService, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.today.ActiveIndex, s.today.NextIndex = schedule.Annotate(s.today.Items, now)
}

// History returns a copy of the attendance history.
func (s *StudentState) History() []models.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AttendanceRecord(nil), s.history...)
}

// Report returns the report for one period.
func (s *StudentState) Report(period models.ReportPeriod) (models.AttendanceReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[period]
	return report, ok
}

// FacultyState is the state container behind one faculty dashboard.
type FacultyState struct {
	mu sync.Mutex

	weekly        models.WeeklySchedule
	today         models.DaySchedule
	roster        []models.Student
	history       []models.AttendanceRecord
	notifications []models.Notification
	toasts        []string

	attendanceOpen bool
	currentClass   string

	bounds   config.BoundsConfig
	token    string
	loadedAt time.Time
}

// NewFacultyState builds an empty container with the given list caps.
func NewFacultyState(bounds config.BoundsConfig) *FacultyState {
	return &FacultyState{bounds: normalizeBounds(bounds)}
}

// SetTimetable replaces the weekly timetable and today's resolved view.
func (s *FacultyState) SetTimetable(weekly models.WeeklySchedule, today models.DaySchedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekly = weekly
	s.today = today
}

// SetRoster replaces the class roster.
func (s *FacultyState) SetRoster(roster []models.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = roster
}

// SetHistory replaces the attendance history baseline.
func (s *FacultyState) SetHistory(history []models.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(history) > s.bounds.HistoryCap {
		history = history[:s.bounds.HistoryCap]
	}
	s.history = history
}

// OpenAttendance starts a marking session for the class. Every roster
// entry is reset to absent here and only here; the reset happens once per
// invocation, never mid-session.
func (s *FacultyState) OpenAttendance(class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roster {
		s.roster[i].PresentToday = false
	}
	s.attendanceOpen = true
	s.currentClass = class
}

// CloseAttendance ends the marking session.
func (s *FacultyState) CloseAttendance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendanceOpen = false
}

// SetStudent marks a single roster entry present or absent.
func (s *FacultyState) SetStudent(studentID string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roster {
		if s.roster[i].ID == studentID {
			s.roster[i].PresentToday = present
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "student not on roster")
}

// MarkAll sets every roster entry to the given presence.
func (s *FacultyState) MarkAll(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roster {
		s.roster[i].PresentToday = present
	}
}

// Stats summarises the current roster marking.
func (s *FacultyState) Stats() models.RosterStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *FacultyState) statsLocked() models.RosterStats {
	stats := models.RosterStats{Total: len(s.roster)}
	for _, student := range s.roster {
		if student.PresentToday {
			stats.Present++
		}
	}
	stats.Absent = stats.Total - stats.Present
	if stats.Total > 0 {
		stats.Percent = int(float64(stats.Present)/float64(stats.Total)*100 + 0.5)
	}
	return stats
}

// Roster returns a copy of the roster.
func (s *FacultyState) Roster() []models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Student(nil), s.roster...)
}

// CurrentClass returns the class of the open marking session, if any.
func (s *FacultyState) CurrentClass() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentClass, s.attendanceOpen
}

// PushNotification prepends a bell entry.
func (s *FacultyState) PushNotification(n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = pushBounded(s.notifications, n, s.bounds.NotificationCap)
}

// PushToast queues a transient toast for the next dashboard poll.
func (s *FacultyState) PushToast(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = pushBounded(s.toasts, message, s.bounds.NotificationCap)
}

func (s *FacultyState) snapshot() (models.DaySchedule, []models.Student, models.RosterStats, []models.AttendanceRecord, []models.Notification, []string, bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.today
	day.Items = append([]models.ScheduleItem(nil), s.today.Items...)
	roster := append([]models.Student(nil), s.roster...)
	history := append([]models.AttendanceRecord(nil), s.history...)
	notifications := append([]models.Notification(nil), s.notifications...)
	toasts := s.toasts
	s.toasts = nil
	return day, roster, s.statsLocked(), history, notifications, toasts, s.attendanceOpen, s.currentClass
}

func (s *FacultyState) annotate(schedule *ScheduleService, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.today.ActiveIndex, s.today.NextIndex = schedule.Annotate(s.today.Items, now)
}

// pushBounded prepends value and evicts the oldest entry past the cap.
func pushBounded[T any](list []T, value T, limit int) []T {
	list = append([]T{value}, list...)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
