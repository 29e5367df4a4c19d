package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/middleware"
	"github.com/msu-tj/schedule-desk-api/internal/models"
	"github.com/msu-tj/schedule-desk-api/internal/service"
	"github.com/msu-tj/schedule-desk-api/internal/upstream"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type fakeExportClient struct {
	renderCalls int
}

func (f *fakeExportClient) ExportSchedule(_ context.Context, _ upstream.TokenSource, scheduleID int64, format string, _ []int64, _ string) (*upstream.ExportFile, error) {
	f.renderCalls++
	return &upstream.ExportFile{Data: []byte("file"), Filename: "schedule.xlsx"}, nil
}

func (f *fakeExportClient) CalendarLessons(_ context.Context, _ upstream.TokenSource, _ int64, _, _ string) (*models.CalendarLessonList, error) {
	return &models.CalendarLessonList{}, nil
}

type fakeHealthClient struct {
	health *service.ScheduleHealth
}

func (f *fakeHealthClient) Health(_ context.Context, _ upstream.TokenSource, _ int64) (*service.ScheduleHealth, error) {
	return f.health, nil
}

func (f *fakeHealthClient) Groups(_ context.Context, _ upstream.TokenSource, _ int64) (*models.ScheduleGroupList, error) {
	return &models.ScheduleGroupList{}, nil
}

func exportTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	sessions := service.NewSessionService(nil, nil, nil, 0)
	c.Set(middleware.ContextSessionKey, sessions.TokenSource(&models.Session{AccessToken: "token"}))
	return c, recorder
}

func TestExportHandlerHeldAnswersConflictWithCode(t *testing.T) {
	client := &fakeExportClient{}
	health := &fakeHealthClient{health: &service.ScheduleHealth{TotalIssues: 3, HasIssues: true}}
	h := NewExportHandler(service.NewExportService(client, health, nil, nil, service.ExportConfig{}))

	c, recorder := exportTestContext(t, `{"schedule_id":7}`)
	h.Export(c)

	assert.Equal(t, appErrors.ErrConfirmationRequired.Status, recorder.Code)
	assert.Zero(t, client.renderCalls)

	var envelope struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["confirmation_required"])
	assert.Equal(t, appErrors.ErrConfirmationRequired.Code, envelope.Meta["code"])
}

func TestExportHandlerConfirmedStreamsFile(t *testing.T) {
	client := &fakeExportClient{}
	health := &fakeHealthClient{health: &service.ScheduleHealth{TotalIssues: 3, HasIssues: true}}
	h := NewExportHandler(service.NewExportService(client, health, nil, nil, service.ExportConfig{}))

	c, recorder := exportTestContext(t, `{"schedule_id":7,"confirmed":true}`)
	h.Export(c)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, client.renderCalls)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "schedule.xlsx")
}
