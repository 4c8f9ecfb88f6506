package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/dto"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/response"
)

// OpenAttendanceRequest names the class a faculty member is marking.
type OpenAttendanceRequest struct {
	Class string `json:"class" binding:"required"`
}

// RosterMarkRequest toggles a single roster entry.
type RosterMarkRequest struct {
	Present bool `json:"present"`
}

// DashboardHandler serves the role dashboards and faculty roster actions.
type DashboardHandler struct {
	dashboards *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboards *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// Student returns the student dashboard projection.
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.dashboards.Student(c.Request.Context(), claims.UserID, tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Faculty returns the faculty dashboard projection.
func (h *DashboardHandler) Faculty(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	view, err := h.dashboards.Faculty(c.Request.Context(), claims.UserID, tokenFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Notices returns one page of college notices.
func (h *DashboardHandler) Notices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	notices, pagination, err := h.dashboards.Notices(c.Request.Context(), tokenFromContext(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NoticePage{Notices: notices}, pagination)
}

// OpenAttendance starts a marking session for a class.
func (h *DashboardHandler) OpenAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req OpenAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	h.dashboards.OpenAttendance(c.Request.Context(), claims.UserID, req.Class)
	response.NoContent(c)
}

// CloseAttendance ends the marking session.
func (h *DashboardHandler) CloseAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.dashboards.CloseAttendance(claims.UserID)
	response.NoContent(c)
}

// SetRosterStudent toggles one student's mark.
func (h *DashboardHandler) SetRosterStudent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req RosterMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.dashboards.SetRosterStudent(c.Request.Context(), claims.UserID, c.Param("id"), req.Present); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAllRoster sets every roster mark at once.
func (h *DashboardHandler) MarkAllRoster(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req RosterMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	h.dashboards.MarkAllRoster(claims.UserID, req.Present)
	response.NoContent(c)
}

// ClearNotifications empties the student's bell dropdown.
func (h *DashboardHandler) ClearNotifications(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.dashboards.ClearStudentNotifications(claims.UserID)
	response.NoContent(c)
}
