package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

// ExportHandler serves schedule downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Download a rendered schedule
// @Description With open conflicts or warnings and confirmed=false the call
// @Description answers 409 with the issues instead of a file.
// @Tags Export
// @Accept json
// @Produce json
// @Produce application/octet-stream
// @Security BearerAuth
// @Param payload body service.ExportRequest true "Export"
// @Success 200 {file} binary
// @Failure 409 {object} response.Envelope
// @Router /export [post]
func (h *ExportHandler) Export(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload"))
		return
	}

	result, err := h.service.Export(c.Request.Context(), ts, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.PendingIssues != nil {
		held := appErrors.ErrConfirmationRequired
		response.JSON(c, held.Status, result.PendingIssues, nil, map[string]interface{}{
			"confirmation_required": true,
			"code":                  held.Code,
		})
		return
	}

	writeFile(c, result.File)
}

// Report godoc
// @Summary Render a board window locally
// @Tags Export
// @Produce application/octet-stream
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Param date query string true "Navigation date (YYYY-MM-DD)"
// @Param view query string false "day or week"
// @Param format query string false "excel or pdf"
// @Success 200 {file} binary
// @Router /schedules/{id}/report [get]
func (h *ExportHandler) Report(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule id"))
		return
	}

	view := models.CalendarView(c.DefaultQuery("view", string(models.ViewWeek)))
	file, err := h.service.BoardReport(c.Request.Context(), ts, scheduleID, c.Query("date"), view, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	writeFile(c, file)
}

func writeFile(c *gin.Context, file *upstream.ExportFile) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, contentType, file.Data)
}
