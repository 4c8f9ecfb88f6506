package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/dto"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/response"
)

// PreferenceHandler exposes per-user UI preferences.
type PreferenceHandler struct {
	prefs *service.PreferenceService
}

// NewPreferenceHandler constructs handler.
func NewPreferenceHandler(prefs *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// Get returns the stored preferences.
func (h *PreferenceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	prefs, err := h.prefs.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// Update overwrites the stored preferences.
func (h *PreferenceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	if err := h.prefs.Set(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}
