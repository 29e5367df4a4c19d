package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

// Entities exposed through the generic proxy. Everything else is refused
// without touching the upstream.
var proxiedEntities = map[string]struct{}{
	"faculty":            {},
	"direction":          {},
	"group":              {},
	"professor":          {},
	"subject":            {},
	"room":               {},
	"schedule":           {},
	"lesson":             {},
	"academic_year":      {},
	"semester":           {},
	"user":               {},
	"professor_workload": {},
	"subject_assignment": {},
}

// Query keys claimed by pagination and sorting; the rest pass through as
// filters.
var reservedQueryKeys = map[string]struct{}{
	"page":     {},
	"pageSize": {},
	"sort_by":  {},
	"desc":     {},
}

// EntityHandler proxies entity CRUD to the upstream API, preserving its
// pagination, sorting and filter query contract.
type EntityHandler struct {
	client *upstream.Client
}

// NewEntityHandler constructs handler.
func NewEntityHandler(client *upstream.Client) *EntityHandler {
	return &EntityHandler{client: client}
}

func (h *EntityHandler) request(c *gin.Context) (upstream.TokenSource, string, bool) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, "", false
	}
	entity := c.Param("entity")
	if _, ok := proxiedEntities[entity]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "entity not proxied: "+entity))
		return nil, "", false
	}
	return ts, entity, true
}

func (h *EntityHandler) entityID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid entity id"))
		return 0, false
	}
	return id, true
}

// List godoc
// @Summary List an upstream entity collection
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity name"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param sort_by query string false "Sort column"
// @Param desc query bool false "Descending"
// @Success 200 {object} response.Envelope
// @Router /entities/{entity} [get]
func (h *EntityHandler) List(c *gin.Context) {
	ts, entity, ok := h.request(c)
	if !ok {
		return
	}

	query := models.ListQuery{Filters: map[string][]string{}}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		query.Page = page
	}
	if pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20")); err == nil {
		query.PageSize = pageSize
	}
	query.SortBy = c.Query("sort_by")
	query.Desc = c.Query("desc") == "true"
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedQueryKeys[key]; reserved {
			continue
		}
		query.Filters[key] = values
	}

	page, err := h.client.List(c.Request.Context(), ts, entity, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	pagination := &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: page.Total,
	}
	response.JSON(c, http.StatusOK, page.Items, pagination)
}

// Get godoc
// @Summary Fetch one upstream entity
// @Tags Entities
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity name"
// @Param id path int true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /entities/{entity}/{id} [get]
func (h *EntityHandler) Get(c *gin.Context) {
	ts, entity, ok := h.request(c)
	if !ok {
		return
	}
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	raw, err := h.client.Get(c.Request.Context(), ts, entity, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, raw, nil)
}

// Create godoc
// @Summary Create an upstream entity
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity name"
// @Success 201 {object} response.Envelope
// @Router /entities/{entity} [post]
func (h *EntityHandler) Create(c *gin.Context) {
	ts, entity, ok := h.request(c)
	if !ok {
		return
	}

	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}

	raw, err := h.client.Create(c.Request.Context(), ts, entity, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, raw)
}

// Update godoc
// @Summary Update an upstream entity
// @Tags Entities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity path string true "Entity name"
// @Param id path int true "Entity ID"
// @Success 200 {object} response.Envelope
// @Router /entities/{entity}/{id} [patch]
func (h *EntityHandler) Update(c *gin.Context) {
	ts, entity, ok := h.request(c)
	if !ok {
		return
	}
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	var payload json.RawMessage
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}

	raw, err := h.client.Update(c.Request.Context(), ts, entity, id, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, raw, nil)
}

// Delete godoc
// @Summary Delete an upstream entity
// @Tags Entities
// @Security BearerAuth
// @Param entity path string true "Entity name"
// @Param id path int true "Entity ID"
// @Success 204
// @Router /entities/{entity}/{id} [delete]
func (h *EntityHandler) Delete(c *gin.Context) {
	ts, entity, ok := h.request(c)
	if !ok {
		return
	}
	id, ok := h.entityID(c)
	if !ok {
		return
	}

	if err := h.client.Delete(c.Request.Context(), ts, entity, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
