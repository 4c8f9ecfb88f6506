package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/middleware"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/storage"
)

func newDashboardFixture(t *testing.T) (*DashboardHandler, *service.DashboardService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := upstream.NewClient("http://127.0.0.1:1", 50*time.Millisecond)
	schedule := service.NewScheduleService(config.ScheduleConfig{}, nil)
	dashboards := service.NewDashboardService(api, schedule, nil, config.BoundsConfig{}, time.Minute, nil)
	return NewDashboardHandler(dashboards), dashboards
}

func roleContext(t *testing.T, method, path string, body interface{}, userID string, role models.UserRole) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	reader := bytes.NewReader(nil)
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: role})
	c.Set(middleware.ContextTokenKey, "tok")
	return c, rec
}

func TestStudentDashboardServesDefaultsWhenUpstreamDown(t *testing.T) {
	h, _ := newDashboardFixture(t)

	c, rec := roleContext(t, http.MethodGet, "/student/dashboard", nil, "stu-1", models.RoleStudent)
	h.Student(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			Day struct {
				DayName string `json:"day_name"`
			} `json:"day"`
			Notices []models.Notice `json:"notices"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Day.DayName)
	assert.NotEmpty(t, envelope.Data.Notices)
}

func TestFacultyRosterActionsOverHTTP(t *testing.T) {
	h, dashboards := newDashboardFixture(t)
	dashboards.FacultyStateFor("fac-1").SetRoster([]models.Student{{ID: "s1", Name: "Asha"}})

	c, rec := roleContext(t, http.MethodPost, "/faculty/attendance/open", gin.H{"class": "DSA"}, "fac-1", models.RoleFaculty)
	h.OpenAttendance(c)
	// Flush the buffered status; outside a router nothing else writes it.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = roleContext(t, http.MethodPatch, "/faculty/roster/s1", gin.H{"present": true}, "fac-1", models.RoleFaculty)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	h.SetRosterStudent(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, 1, dashboards.FacultyStateFor("fac-1").Stats().Present)

	c, rec = roleContext(t, http.MethodPatch, "/faculty/roster/ghost", gin.H{"present": true}, "fac-1", models.RoleFaculty)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}
	h.SetRosterStudent(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHistoryCSVOverHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := upstream.NewClient("http://127.0.0.1:1", 50*time.Millisecond)
	schedule := service.NewScheduleService(config.ScheduleConfig{}, nil)
	dashboards := service.NewDashboardService(api, schedule, nil, config.BoundsConfig{}, time.Minute, nil)
	exports := service.NewExportService(dashboards, nil)
	photos, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	h := NewExportHandler(exports, photos, signer)

	dashboards.StudentStateFor("stu-1").SetReports(nil, []models.AttendanceRecord{
		{Date: "2024-01-01", Subject: "DSA", Status: models.ScheduleStatusPresent},
	})

	c, rec := roleContext(t, http.MethodGet, "/student/history/export", nil, "stu-1", models.RoleStudent)
	h.HistoryCSV(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance_history.csv")
	assert.Equal(t, "Date,Subject,Status\n\"2024-01-01\",\"DSA\",\"Present\"", rec.Body.String())
}

func TestPreferenceDefaultsOverHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewPreferenceHandler(service.NewPreferenceService(nil, nil))

	c, rec := roleContext(t, http.MethodGet, "/preferences", nil, "stu-1", models.RoleStudent)
	h.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data struct {
			DarkMode   bool `json:"dark_mode"`
			EmailNotif bool `json:"email_notif"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.DarkMode)
	assert.True(t, envelope.Data.EmailNotif)
}
