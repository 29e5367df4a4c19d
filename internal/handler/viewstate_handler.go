package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

// ViewStateHandler serves the persisted per-user table state.
type ViewStateHandler struct {
	service *service.ViewStateService
}

// NewViewStateHandler constructs handler.
func NewViewStateHandler(svc *service.ViewStateService) *ViewStateHandler {
	return &ViewStateHandler{service: svc}
}

func (h *ViewStateHandler) userID(c *gin.Context) (string, bool) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return ts.Session().UserID(), true
}

// List godoc
// @Summary List every stored table state of the current user
// @Tags ViewState
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /view-states [get]
func (h *ViewStateHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	records, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Get godoc
// @Summary Load one table's stored state
// @Tags ViewState
// @Produce json
// @Security BearerAuth
// @Param tableKey path string true "Table key"
// @Success 200 {object} response.Envelope
// @Router /view-states/{tableKey} [get]
func (h *ViewStateHandler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	state, err := h.service.Get(c.Request.Context(), userID, c.Param("tableKey"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Save godoc
// @Summary Store one table's state
// @Tags ViewState
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tableKey path string true "Table key"
// @Success 204
// @Router /view-states/{tableKey} [put]
func (h *ViewStateHandler) Save(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	req := service.SaveViewStateRequest{TableKey: c.Param("tableKey")}
	if err := c.ShouldBindJSON(&req.State); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid view state payload"))
		return
	}

	if err := h.service.Save(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reset godoc
// @Summary Drop one table's stored state
// @Tags ViewState
// @Security BearerAuth
// @Param tableKey path string true "Table key"
// @Success 204
// @Router /view-states/{tableKey} [delete]
func (h *ViewStateHandler) Reset(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.service.Reset(c.Request.Context(), userID, c.Param("tableKey")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
