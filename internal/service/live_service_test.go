package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
)

type channelSource struct {
	events chan Event
}

func (s *channelSource) Events(ctx context.Context) (<-chan Event, error) {
	return s.events, nil
}

func newLiveFixture(api collegeAPI) (*LiveService, *DashboardService) {
	dash := newDashboardForTest(api, mondayAt(9, 0))
	live := NewLiveService(nil, dash, nil)
	live.now = func() time.Time { return mondayAt(9, 30) }
	return live, dash
}

func TestDispatchNewNoticeRefetchesAndToasts(t *testing.T) {
	api := &stubAPI{notices: []models.Notice{{Title: "Holiday tomorrow"}}}
	live, dash := newLiveFixture(api)
	state := dash.StudentStateFor("stu-1")
	state.mu.Lock()
	state.token = "tok"
	state.mu.Unlock()

	live.Dispatch(context.Background(), Event{Name: EventNewNotice, Title: "Holiday tomorrow"})

	_, _, _, _, _, notices, toasts := state.snapshot()
	assert.Equal(t, []string{"New Notice: Holiday tomorrow"}, toasts)
	require.Len(t, notices, 1)
	assert.Equal(t, "Holiday tomorrow", notices[0].Title)
}

func TestDispatchNewAttendanceSessionAddsActivity(t *testing.T) {
	live, dash := newLiveFixture(&stubAPI{})
	state := dash.StudentStateFor("stu-1")

	live.Dispatch(context.Background(), Event{Name: EventNewAttendanceSession, SubjectName: "DSA"})

	_, _, _, activity, _, _, toasts := state.snapshot()
	assert.Equal(t, []string{"Attendance session started: DSA"}, toasts)
	require.Len(t, activity, 1)
	assert.Equal(t, "Attendance session started for DSA", activity[0].Message)
	assert.Equal(t, "09:30", activity[0].Time)
}

func TestDispatchAttendanceConfirmedRefreshesReports(t *testing.T) {
	live, dash := newLiveFixture(&stubAPI{})
	state := dash.StudentStateFor("stu-1")

	live.Dispatch(context.Background(), Event{Name: EventAttendanceConfirmed, Status: "Present"})

	_, _, _, _, _, _, toasts := state.snapshot()
	assert.Equal(t, []string{"Attendance marked: Present"}, toasts)
}

func TestDispatchStudentJoinedDefaultsName(t *testing.T) {
	live, dash := newLiveFixture(&stubAPI{})
	state := dash.FacultyStateFor("fac-1")

	live.Dispatch(context.Background(), Event{Name: EventStudentJoinedSession})

	_, _, _, _, _, toasts, _, _ := state.snapshot()
	require.Len(t, toasts, 1)
	assert.Contains(t, toasts[0], "Student")
}

func TestDispatchUnknownEventIsIgnored(t *testing.T) {
	live, dash := newLiveFixture(&stubAPI{})
	state := dash.StudentStateFor("stu-1")

	live.Dispatch(context.Background(), Event{Name: "somethingElse"})

	_, _, _, _, _, _, toasts := state.snapshot()
	assert.Empty(t, toasts)
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	source := &channelSource{events: make(chan Event, 1)}
	dash := newDashboardForTest(&stubAPI{}, mondayAt(9, 0))
	live := NewLiveService(source, dash, nil)
	state := dash.StudentStateFor("stu-1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- live.Run(ctx) }()

	source.events <- Event{Name: EventNewAttendanceSession, SubjectName: "M3"}

	require.Eventually(t, func() bool {
		_, _, _, _, _, _, toasts := state.snapshot()
		return len(toasts) > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
