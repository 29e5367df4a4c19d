package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

// FiltersHandler serves the resolved filter schema per table.
type FiltersHandler struct {
	service *service.FilterSetService
}

// NewFiltersHandler constructs handler.
func NewFiltersHandler(svc *service.FilterSetService) *FiltersHandler {
	return &FiltersHandler{service: svc}
}

// Tables godoc
// @Summary List tables with a filter set
// @Tags Filters
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /filters [get]
func (h *FiltersHandler) Tables(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Tables(), nil)
}

// Schema godoc
// @Summary Resolve the filter schema of a table
// @Description Current selections come in as repeated query parameters and
// @Description narrow dependent filters.
// @Tags Filters
// @Produce json
// @Security BearerAuth
// @Param tableKey path string true "Table key"
// @Success 200 {object} response.Envelope
// @Router /filters/{tableKey} [get]
func (h *FiltersHandler) Schema(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	values := models.FilterValues{}
	for key, selected := range c.Request.URL.Query() {
		values[key] = selected
	}

	entries, err := h.service.Schema(c.Request.Context(), ts, c.Param("tableKey"), values)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
