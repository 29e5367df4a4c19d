package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
	"github.com/msu-tj/schedule-desk-api/pkg/response"
)

func TestEntityHandlerRefusesUnlistedEntity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	upstreamCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		upstreamCalled = true
	}))
	defer server.Close()

	h := NewEntityHandler(upstream.New(server.URL, server.Client(), nil))

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/entities/audit_log", nil)
	c.Params = gin.Params{{Key: "entity", Value: "audit_log"}}

	sessions := service.NewSessionService(nil, nil, nil, 0)
	c.Set(middleware.ContextSessionKey, sessions.TokenSource(&models.Session{AccessToken: "token"}))

	h.List(c)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.False(t, upstreamCalled)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrForbidden.Code, envelope.Error.Code)
}
