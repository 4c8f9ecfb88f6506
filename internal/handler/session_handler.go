package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/response"
)

// LocationRequest carries one device GPS reading. Nil coordinates mean
// the device could not produce a fix.
type LocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Denied    bool     `json:"denied"`
}

// SessionHandler exposes the student check-in flow.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start opens a verification session for the given class.
func (h *SessionHandler) Start(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), claims.UserID, tokenFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// VerifyLocation runs the geofence gate with the submitted reading.
func (h *SessionHandler) VerifyLocation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	reading := models.LocationReading{Denied: req.Denied}
	if req.Latitude == nil || req.Longitude == nil {
		reading.Unavailable = !req.Denied
	} else {
		reading.Position = models.GeoPosition{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	session, _, err := h.sessions.VerifyLocation(c.Request.Context(), claims.UserID, c.Param("id"), reading)
	if err != nil {
		// Geofence rejections still return the session so the client can
		// render the failed stage and offer a retry.
		if session != nil {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{Data: session, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Retry re-arms a session that failed the location check.
func (h *SessionHandler) Retry(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session, err := h.sessions.Retry(claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// SnapshotRequest carries the frame uploaded by the device camera.
// Denied reports a device-side permission refusal.
type SnapshotRequest struct {
	Image  string `json:"image"`
	Denied bool   `json:"denied"`
}

// Snapshot feeds the uploaded frame and captures the verification photo.
func (h *SessionHandler) Snapshot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if req.Denied {
		err := h.sessions.FailCamera(claims.UserID, c.Param("id"))
		response.Error(c, err)
		return
	}

	if req.Image != "" {
		frame, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image must be base64 encoded"))
			return
		}
		if err := h.sessions.FeedFrame(claims.UserID, c.Param("id"), frame); err != nil {
			response.Error(c, err)
			return
		}
	}

	session, err := h.sessions.Snapshot(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if session != nil {
			appErr := appErrors.FromError(err)
			c.JSON(appErr.Status, response.Envelope{Data: session, Error: appErr})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Submit finalizes the check-in.
func (h *SessionHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session, err := h.sessions.Submit(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Cancel abandons the session.
func (h *SessionHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.sessions.Cancel(claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Get returns the current session state.
func (h *SessionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session, err := h.sessions.Get(claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
