package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/service"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/response"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/storage"
)

// ExportHandler serves CSV/PDF downloads and signed photo fetches.
type ExportHandler struct {
	exports *service.ExportService
	photos  *storage.LocalStorage
	signer  *storage.SignedURLSigner
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService, photos *storage.LocalStorage, signer *storage.SignedURLSigner) *ExportHandler {
	return &ExportHandler{exports: exports, photos: photos, signer: signer}
}

// HistoryCSV downloads the student's attendance history.
func (h *ExportHandler) HistoryCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	data, filename, err := h.exports.StudentHistoryCSV(claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveAttachment(c, filename, "text/csv", data)
}

// RosterCSV downloads today's class marking.
func (h *ExportHandler) RosterCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	data, filename, err := h.exports.ClassRosterCSV(claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveAttachment(c, filename, "text/csv", data)
}

// ReportPDF downloads the per-subject report for one period.
func (h *ExportHandler) ReportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	period := models.ReportPeriod(c.DefaultQuery("period", string(models.ReportOverall)))
	switch period {
	case models.ReportWeekly, models.ReportMonthly, models.ReportOverall:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown report period"))
		return
	}

	data, filename, err := h.exports.StudentReportPDF(claims.UserID, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveAttachment(c, filename, "application/pdf", data)
}

// Photo streams a captured snapshot referenced by a signed token.
func (h *ExportHandler) Photo(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	_, relPath, _, err := h.signer.Parse(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid photo token"))
		return
	}

	file, err := h.photos.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "photo not found"))
		return
	}
	defer file.Close()

	c.Header("Cache-Control", "private, max-age=300")
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}

func serveAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
