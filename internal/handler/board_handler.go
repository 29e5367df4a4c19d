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

// BoardHandler serves the calendar board and its drag and resize mutations.
type BoardHandler struct {
	service *service.BoardService
}

// NewBoardHandler constructs handler.
func NewBoardHandler(svc *service.BoardService) *BoardHandler {
	return &BoardHandler{service: svc}
}

// View godoc
// @Summary Project a schedule window onto the grouped board
// @Tags Board
// @Produce json
// @Security BearerAuth
// @Param schedule_id query int true "Schedule ID"
// @Param date query string true "Navigation date (YYYY-MM-DD)"
// @Param view query string false "day or week"
// @Param group_by query string false "none, group, professor or room"
// @Success 200 {object} response.Envelope
// @Router /board [get]
func (h *BoardHandler) View(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	scheduleID, err := strconv.ParseInt(c.Query("schedule_id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid schedule_id"))
		return
	}

	query := models.BoardQuery{
		ScheduleID: scheduleID,
		Date:       c.Query("date"),
		View:       models.CalendarView(c.DefaultQuery("view", string(models.ViewWeek))),
		GroupBy:    models.GroupBy(c.DefaultQuery("group_by", string(models.GroupByNone))),
	}

	view, err := h.service.View(c.Request.Context(), ts, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Move godoc
// @Summary Commit a lesson drag
// @Tags Board
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.MoveLessonRequest true "Move"
// @Success 200 {object} response.Envelope
// @Router /board/lessons/move [post]
func (h *BoardHandler) Move(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.MoveLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload"))
		return
	}

	lesson, err := h.service.MoveLesson(c.Request.Context(), ts, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Resize godoc
// @Summary Commit a lesson duration change
// @Tags Board
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.ResizeLessonRequest true "Resize"
// @Success 200 {object} response.Envelope
// @Router /board/lessons/resize [post]
func (h *BoardHandler) Resize(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ResizeLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resize payload"))
		return
	}

	lesson, err := h.service.ResizeLesson(c.Request.Context(), ts, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}
