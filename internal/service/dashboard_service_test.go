package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
)

// stubAPI serves canned upstream payloads.
type stubAPI struct {
	roster    []models.Student
	timetable []models.TimetableEntry
	notices   []models.Notice
	report    *upstream.ReportPayload
	history   []models.AttendanceRecord

	noticeCalls int
}

func (s *stubAPI) Roster(context.Context, string) ([]models.Student, error) {
	return s.roster, nil
}

func (s *stubAPI) Timetable(context.Context, string) ([]models.TimetableEntry, error) {
	return s.timetable, nil
}

func (s *stubAPI) Notices(context.Context, string, int, int) ([]models.Notice, int, error) {
	s.noticeCalls++
	return s.notices, len(s.notices), nil
}

func (s *stubAPI) StudentReport(context.Context, string) (*upstream.ReportPayload, error) {
	return s.report, nil
}

func (s *stubAPI) FacultyHistory(context.Context, string) ([]models.AttendanceRecord, error) {
	return s.history, nil
}

func newDashboardForTest(api collegeAPI, now time.Time) *DashboardService {
	schedule := NewScheduleService(config.ScheduleConfig{}, nil)
	svc := NewDashboardService(api, schedule, nil, config.BoundsConfig{}, time.Minute, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestStudentDashboardFromUpstream(t *testing.T) {
	api := &stubAPI{
		timetable: []models.TimetableEntry{
			{Day: "Monday", StartTime: "09:00", SubjectName: "Operating Systems", Room: "204"},
			{Day: "Monday", StartTime: "10:00", SubjectName: "M3", Room: "Hall A"},
		},
		notices: []models.Notice{{Title: "Exam schedule"}},
		report: &upstream.ReportPayload{
			Subjects: []upstream.ReportSubject{{Name: "DSA", Total: 10, Present: 9}},
		},
	}
	svc := newDashboardForTest(api, mondayAt(9, 5))

	view, err := svc.Student(context.Background(), "stu-1", "tok")
	require.NoError(t, err)

	assert.Equal(t, "Monday", view.Day.DayName)
	require.Len(t, view.Day.Items, 2)
	assert.Equal(t, 0, view.Day.ActiveIndex)
	require.NotNil(t, view.NextUp)
	assert.Equal(t, "M3", view.NextUp.Subject)
	assert.Len(t, view.Notices, 1)
	assert.NotEmpty(t, view.Reports)
}

func TestStudentDashboardDegradesToDefaults(t *testing.T) {
	svc := newDashboardForTest(offlineAPI{}, mondayAt(9, 5))

	view, err := svc.Student(context.Background(), "stu-1", "tok")
	require.NoError(t, err)

	// The upstream is down: the baked-in schedule and reports render instead.
	assert.Equal(t, "Monday", view.Day.DayName)
	assert.NotEmpty(t, view.Day.Items)
	assert.NotEmpty(t, view.Reports)
	assert.NotEmpty(t, view.Notices)
}

func TestStudentDashboardCachesUpstream(t *testing.T) {
	api := &stubAPI{notices: []models.Notice{{Title: "One"}}}
	svc := newDashboardForTest(api, mondayAt(9, 0))

	_, err := svc.Student(context.Background(), "stu-1", "tok")
	require.NoError(t, err)
	calls := api.noticeCalls

	// A second render inside the TTL does not refetch.
	_, err = svc.Student(context.Background(), "stu-1", "tok")
	require.NoError(t, err)
	assert.Equal(t, calls, api.noticeCalls)
}

func TestFacultyDashboardAndRosterFlow(t *testing.T) {
	api := &stubAPI{
		roster: []models.Student{
			{ID: "s1", RollNo: "CS-101", Name: "Asha"},
			{ID: "s2", RollNo: "CS-102", Name: "Vikram"},
		},
	}
	svc := newDashboardForTest(api, mondayAt(9, 5))

	view, err := svc.Faculty(context.Background(), "fac-1", "tok")
	require.NoError(t, err)
	assert.Len(t, view.Roster, 2)
	assert.False(t, view.AttendanceOpen)

	svc.OpenAttendance(context.Background(), "fac-1", "DSA")
	require.NoError(t, svc.SetRosterStudent(context.Background(), "fac-1", "s1", true))

	view, err = svc.Faculty(context.Background(), "fac-1", "tok")
	require.NoError(t, err)
	assert.True(t, view.AttendanceOpen)
	assert.Equal(t, "DSA", view.CurrentClass)
	assert.Equal(t, 1, view.Stats.Present)

	svc.MarkAllRoster("fac-1", true)
	assert.Equal(t, 2, svc.FacultyStateFor("fac-1").Stats().Present)
}

func TestOpenAttendancePublishesEvent(t *testing.T) {
	bus := &recordingPublisher{}
	schedule := NewScheduleService(config.ScheduleConfig{}, nil)
	svc := NewDashboardService(&stubAPI{}, schedule, bus, config.BoundsConfig{}, time.Minute, nil)

	svc.OpenAttendance(context.Background(), "fac-1", "M3")

	events := bus.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventNewAttendanceSession, events[0].Name)
	assert.Equal(t, "M3", events[0].SubjectName)
}

func TestSetRosterStudentAnnouncesJoin(t *testing.T) {
	bus := &recordingPublisher{}
	schedule := NewScheduleService(config.ScheduleConfig{}, nil)
	svc := NewDashboardService(&stubAPI{}, schedule, bus, config.BoundsConfig{}, time.Minute, nil)
	svc.FacultyStateFor("fac-1").SetRoster([]models.Student{{ID: "s1", Name: "Asha"}})

	require.NoError(t, svc.SetRosterStudent(context.Background(), "fac-1", "s1", true))
	// Unmarking is silent.
	require.NoError(t, svc.SetRosterStudent(context.Background(), "fac-1", "s1", false))

	events := bus.all()
	require.Len(t, events, 1)
	assert.Equal(t, EventStudentJoinedSession, events[0].Name)
	assert.Equal(t, "Asha", events[0].StudentName)
}

func TestNoticesPagination(t *testing.T) {
	api := &stubAPI{notices: []models.Notice{{Title: "A"}, {Title: "B"}}}
	svc := newDashboardForTest(api, mondayAt(9, 0))

	notices, pagination, err := svc.Notices(context.Background(), "tok", 0, 0)
	require.NoError(t, err)
	assert.Len(t, notices, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)
}

func TestBroadcastReachesLoadedContainers(t *testing.T) {
	svc := newDashboardForTest(&stubAPI{}, mondayAt(9, 0))
	student := svc.StudentStateFor("stu-1")
	faculty := svc.FacultyStateFor("fac-1")

	svc.Broadcast("New Notice: Exam", nil)

	_, _, _, _, _, _, toasts := student.snapshot()
	assert.Equal(t, []string{"New Notice: Exam"}, toasts)
	_, _, _, _, _, fToasts, _, _ := faculty.snapshot()
	assert.Equal(t, []string{"New Notice: Exam"}, fToasts)
}
