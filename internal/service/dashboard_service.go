package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/dto"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
)

// collegeAPI is the slice of the upstream client the dashboards consume.
type collegeAPI interface {
	Roster(ctx context.Context, token string) ([]models.Student, error)
	Timetable(ctx context.Context, token string) ([]models.TimetableEntry, error)
	Notices(ctx context.Context, token string, page, pageSize int) ([]models.Notice, int, error)
	StudentReport(ctx context.Context, token string) (*upstream.ReportPayload, error)
	FacultyHistory(ctx context.Context, token string) ([]models.AttendanceRecord, error)
}

// DashboardService owns the per-user state containers and projects them
// into role views. Business mutations flow through the containers; the
// projections themselves carry no logic.
type DashboardService struct {
	api       collegeAPI
	schedule  *ScheduleService
	publisher Publisher
	bounds    config.BoundsConfig
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	students map[string]*StudentState
	faculty  map[string]*FacultyState
}

// NewDashboardService instantiates DashboardService.
func NewDashboardService(api collegeAPI, schedule *ScheduleService, publisher Publisher, bounds config.BoundsConfig, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		api:       api,
		schedule:  schedule,
		publisher: publisher,
		bounds:    bounds,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
		students:  make(map[string]*StudentState),
		faculty:   make(map[string]*FacultyState),
	}
}

// StudentStateFor returns (creating if needed) the container for a student.
func (s *DashboardService) StudentStateFor(userID string) *StudentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.students[userID]
	if !ok {
		state = NewStudentState(s.bounds)
		s.students[userID] = state
	}
	return state
}

// FacultyStateFor returns (creating if needed) the container for a faculty member.
func (s *DashboardService) FacultyStateFor(userID string) *FacultyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.faculty[userID]
	if !ok {
		state = NewFacultyState(s.bounds)
		s.faculty[userID] = state
	}
	return state
}

// Student loads (or refreshes) and projects the student dashboard.
func (s *DashboardService) Student(ctx context.Context, userID, token string) (*dto.StudentDashboard, error) {
	state := s.StudentStateFor(userID)
	s.ensureStudentLoaded(ctx, state, token)

	now := s.now()
	state.annotate(s.schedule, now)
	day, reports, history, activity, notifications, notices, toasts := state.snapshot()

	view := &dto.StudentDashboard{
		Day:           day,
		Reports:       reports,
		History:       history,
		Activity:      activity,
		Notifications: notifications,
		Notices:       notices,
		LowAttendance: state.LowAttendance(),
		Toasts:        toasts,
	}
	if day.NextIndex >= 0 && day.NextIndex < len(day.Items) {
		next := day.Items[day.NextIndex]
		view.NextUp = &next
	}
	return view, nil
}

// Faculty loads (or refreshes) and projects the faculty dashboard.
func (s *DashboardService) Faculty(ctx context.Context, userID, token string) (*dto.FacultyDashboard, error) {
	state := s.FacultyStateFor(userID)
	s.ensureFacultyLoaded(ctx, state, token)

	state.annotate(s.schedule, s.now())
	day, roster, stats, history, notifications, toasts, open, class := state.snapshot()

	return &dto.FacultyDashboard{
		Day:            day,
		Roster:         roster,
		Stats:          stats,
		History:        history,
		Notifications:  notifications,
		Toasts:         toasts,
		AttendanceOpen: open,
		CurrentClass:   class,
	}, nil
}

// Notices returns one upstream page for the notices tab.
func (s *DashboardService) Notices(ctx context.Context, token string, page, pageSize int) ([]models.Notice, *models.Pagination, error) {
	notices, total, err := s.api.Notices(ctx, token, page, pageSize)
	if err != nil {
		return nil, nil, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return notices, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// OpenAttendance starts a faculty marking session and announces it.
func (s *DashboardService) OpenAttendance(ctx context.Context, userID, class string) {
	state := s.FacultyStateFor(userID)
	state.OpenAttendance(class)
	s.publish(ctx, Event{Name: EventNewAttendanceSession, SubjectName: class})
}

// CloseAttendance ends the faculty marking session.
func (s *DashboardService) CloseAttendance(userID string) {
	s.FacultyStateFor(userID).CloseAttendance()
}

// SetRosterStudent toggles one student's mark in the open session. A flip
// to present announces the student to the live feed.
func (s *DashboardService) SetRosterStudent(ctx context.Context, userID, studentID string, present bool) error {
	state := s.FacultyStateFor(userID)
	if err := state.SetStudent(studentID, present); err != nil {
		return err
	}
	if present {
		name := "Student"
		for _, student := range state.Roster() {
			if student.ID == studentID {
				name = student.Name
				break
			}
		}
		s.publish(ctx, Event{Name: EventStudentJoinedSession, StudentName: name})
	}
	return nil
}

// MarkAllRoster sets every roster mark at once.
func (s *DashboardService) MarkAllRoster(userID string, present bool) {
	s.FacultyStateFor(userID).MarkAll(present)
}

// ClearStudentNotifications empties the student's bell dropdown.
func (s *DashboardService) ClearStudentNotifications(userID string) {
	s.StudentStateFor(userID).ClearNotifications()
}

// ensureStudentLoaded performs the initial (or stale) upstream fetch.
// Failures degrade gracefully: defaults are installed on the first load,
// last-known data is kept afterwards, and rendering never blocks.
func (s *DashboardService) ensureStudentLoaded(ctx context.Context, state *StudentState, token string) {
	state.mu.Lock()
	fresh := !state.loadedAt.IsZero() && s.now().Sub(state.loadedAt) < s.cacheTTL
	firstLoad := state.loadedAt.IsZero()
	if !fresh {
		state.loadedAt = s.now()
		state.token = token
	}
	state.mu.Unlock()
	if fresh {
		return
	}

	if entries, err := s.api.Timetable(ctx, token); err == nil && len(entries) > 0 {
		weekly := groupTimetable(entries)
		state.SetTimetable(weekly, s.schedule.ResolveToday(weekly, s.now()))
	} else {
		if err != nil {
			s.logger.Warn("timetable fetch failed", zap.Error(err))
		}
		if firstLoad {
			weekly := defaultWeeklySchedule()
			state.SetTimetable(weekly, s.schedule.ResolveToday(weekly, s.now()))
		}
	}

	if payload, err := s.api.StudentReport(ctx, token); err == nil {
		reports, history := reportsFromPayload(payload)
		state.SetReports(reports, history)
	} else {
		s.logger.Warn("attendance report fetch failed", zap.Error(err))
		if firstLoad {
			state.SetReports(defaultReports(), nil)
		}
	}

	if notices, _, err := s.api.Notices(ctx, token, 1, 20); err == nil {
		state.SetNotices(notices)
	} else {
		s.logger.Warn("notices fetch failed", zap.Error(err))
		if firstLoad {
			state.SetNotices(defaultNotices(s.now()))
		}
	}
}

func (s *DashboardService) ensureFacultyLoaded(ctx context.Context, state *FacultyState, token string) {
	state.mu.Lock()
	fresh := !state.loadedAt.IsZero() && s.now().Sub(state.loadedAt) < s.cacheTTL
	firstLoad := state.loadedAt.IsZero()
	if !fresh {
		state.loadedAt = s.now()
		state.token = token
	}
	state.mu.Unlock()
	if fresh {
		return
	}

	if roster, err := s.api.Roster(ctx, token); err == nil {
		state.SetRoster(roster)
	} else {
		s.logger.Warn("roster fetch failed", zap.Error(err))
	}

	if entries, err := s.api.Timetable(ctx, token); err == nil && len(entries) > 0 {
		weekly := groupTimetable(entries)
		state.SetTimetable(weekly, s.schedule.ResolveToday(weekly, s.now()))
	} else {
		if err != nil {
			s.logger.Warn("timetable fetch failed", zap.Error(err))
		}
		if firstLoad {
			weekly := defaultWeeklySchedule()
			state.SetTimetable(weekly, s.schedule.ResolveToday(weekly, s.now()))
		}
	}

	if history, err := s.api.FacultyHistory(ctx, token); err == nil {
		state.SetHistory(history)
	} else {
		s.logger.Warn("faculty history fetch failed", zap.Error(err))
	}
}

// RefreshNotices refetches notices into every loaded container. Invoked
// by the live listener on newNotice.
func (s *DashboardService) RefreshNotices(ctx context.Context) {
	for _, state := range s.studentStates() {
		state.mu.Lock()
		token := state.token
		state.mu.Unlock()
		if token == "" {
			continue
		}
		if notices, _, err := s.api.Notices(ctx, token, 1, 20); err == nil {
			state.SetNotices(notices)
		} else {
			s.logger.Warn("notice refresh failed", zap.Error(err))
		}
	}
}

// RefreshAttendance refetches attendance aggregates into every loaded
// student container. Invoked by the live listener on attendanceConfirmed.
func (s *DashboardService) RefreshAttendance(ctx context.Context) {
	for _, state := range s.studentStates() {
		state.mu.Lock()
		token := state.token
		state.mu.Unlock()
		if token == "" {
			continue
		}
		if payload, err := s.api.StudentReport(ctx, token); err == nil {
			reports, history := reportsFromPayload(payload)
			state.SetReports(reports, history)
		} else {
			s.logger.Warn("attendance refresh failed", zap.Error(err))
		}
	}
}

// Broadcast pushes a toast (and optional activity entry) to every loaded
// container without touching any other state.
func (s *DashboardService) Broadcast(toast string, activity *models.ActivityEntry) {
	for _, state := range s.studentStates() {
		state.PushToast(toast)
		if activity != nil {
			state.PushActivity(*activity)
		}
	}
	for _, state := range s.facultyStates() {
		state.PushToast(toast)
	}
}

func (s *DashboardService) studentStates() []*StudentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*StudentState, 0, len(s.students))
	for _, state := range s.students {
		out = append(out, state)
	}
	return out
}

func (s *DashboardService) facultyStates() []*FacultyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*FacultyState, 0, len(s.faculty))
	for _, state := range s.faculty {
		out = append(out, state)
	}
	return out
}

func (s *DashboardService) publish(ctx context.Context, event Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("event", event.Name), zap.Error(err))
	}
}

// groupTimetable buckets upstream entries by day name.
func groupTimetable(entries []models.TimetableEntry) models.WeeklySchedule {
	weekly := make(models.WeeklySchedule)
	for _, entry := range entries {
		weekly[entry.Day] = append(weekly[entry.Day], entry)
	}
	return weekly
}

// reportsFromPayload maps the upstream report shape into the three
// dashboard report periods plus the history baseline.
func reportsFromPayload(payload *upstream.ReportPayload) (map[models.ReportPeriod]models.AttendanceReport, []models.AttendanceRecord) {
	if payload == nil || len(payload.Subjects) == 0 {
		return nil, nil
	}

	subjects := make([]models.SubjectReport, 0, len(payload.Subjects))
	for _, sub := range payload.Subjects {
		subjects = append(subjects, models.SubjectReport{Name: sub.Name, Total: sub.Total, Present: sub.Present})
	}

	reports := map[models.ReportPeriod]models.AttendanceReport{
		models.ReportWeekly: {
			Labels:   []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			Trend:    orDefault(payload.WeeklyTrend, 5),
			Subjects: subjects,
		},
		models.ReportMonthly: {
			Labels:   []string{"W1", "W2", "W3", "W4"},
			Trend:    orDefault(payload.MonthlyTrend, 4),
			Subjects: subjects,
		},
		models.ReportOverall: {
			Labels:   []string{"Aug", "Sep", "Oct", "Nov"},
			Trend:    orDefault(payload.OverallTrend, 4),
			Subjects: subjects,
		},
	}

	history := make([]models.AttendanceRecord, 0, len(payload.History))
	for _, h := range payload.History {
		history = append(history, models.AttendanceRecord{
			Date:    h.Date,
			Subject: h.SubjectName,
			Status:  models.ScheduleStatus(h.Status),
		})
	}
	return reports, history
}

func orDefault(trend []float64, size int) []float64 {
	if len(trend) > 0 {
		return trend
	}
	return make([]float64, size)
}
