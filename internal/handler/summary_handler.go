package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

// SummaryHandler serves the aggregated schedule health endpoints.
type SummaryHandler struct {
	service *service.SummaryService
}

// NewSummaryHandler constructs handler.
func NewSummaryHandler(svc *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{service: svc}
}

func (h *SummaryHandler) scheduleRequest(c *gin.Context) (*service.RequestTokenSource, int64, bool) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, 0, false
	}
	scheduleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule id"))
		return nil, 0, false
	}
	return ts, scheduleID, true
}

// Conflicts godoc
// @Summary Conflict summary of a schedule
// @Tags Summary
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/conflicts [get]
func (h *SummaryHandler) Conflicts(c *gin.Context) {
	ts, scheduleID, ok := h.scheduleRequest(c)
	if !ok {
		return
	}

	summary, err := h.service.Conflicts(c.Request.Context(), ts, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Warnings godoc
// @Summary Workload overrun warnings local to a schedule
// @Tags Summary
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/warnings [get]
func (h *SummaryHandler) Warnings(c *gin.Context) {
	ts, scheduleID, ok := h.scheduleRequest(c)
	if !ok {
		return
	}

	warnings, err := h.service.Warnings(c.Request.Context(), ts, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, warnings, nil)
}

// Groups godoc
// @Summary Groups involved in a schedule
// @Tags Summary
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/groups [get]
func (h *SummaryHandler) Groups(c *gin.Context) {
	ts, scheduleID, ok := h.scheduleRequest(c)
	if !ok {
		return
	}

	groups, err := h.service.Groups(c.Request.Context(), ts, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// Health godoc
// @Summary Combined issue snapshot of a schedule
// @Tags Summary
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/health [get]
func (h *SummaryHandler) Health(c *gin.Context) {
	ts, scheduleID, ok := h.scheduleRequest(c)
	if !ok {
		return
	}

	health, err := h.service.Health(c.Request.Context(), ts, scheduleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, health, nil)
}

type navigateRequest struct {
	Lessons []models.Lesson `json:"lessons" binding:"required"`
}

// Navigate godoc
// @Summary Resolve the calendar jump target for flagged lessons
// @Tags Summary
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /board/navigate [post]
func (h *SummaryHandler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid navigate payload"))
		return
	}

	target := h.service.NavigateTo(req.Lessons)
	if target == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no dated lessons to navigate to"))
		return
	}
	response.JSON(c, http.StatusOK, target, nil)
}
