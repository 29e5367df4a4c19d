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

// SessionHandler manages login and session endpoints.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Login godoc
// @Summary Log in against the university API
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload"))
		return
	}

	session, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
		"user_id":       session.UserID(),
		"role":          session.Role(),
	}, nil)
}

// Logout godoc
// @Summary Log out the current session
// @Description The token pair is held by the client; the server records the event
// @Tags Session
// @Security BearerAuth
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	h.service.Logout(ts.Session())
	response.NoContent(c)
}

// Me godoc
// @Summary Describe the current session
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *SessionHandler) Me(c *gin.Context) {
	ts, ok := middleware.TokenSourceFrom(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	session := ts.Session()
	payload := gin.H{
		"user_id": session.UserID(),
		"role":    session.Role(),
	}
	if session.Claims != nil && session.Claims.ExpiresAt != nil {
		payload["expires_at"] = session.Claims.ExpiresAt.Time
	}
	response.JSON(c, http.StatusOK, payload, nil)
}
