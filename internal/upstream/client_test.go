package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

type fakeTokenSource struct {
	token        string
	refreshed    string
	refreshErr   error
	refreshCalls int
}

func (f *fakeTokenSource) AccessToken(_ context.Context) (string, error) {
	return f.token, nil
}

func (f *fakeTokenSource) Refresh(_ context.Context) (string, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	f.token = f.refreshed
	return f.refreshed, nil
}

func TestClientRetriesOnceAfterRefresh(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.ConflictsSummary{TotalConflicts: 3})
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "stale", refreshed: "fresh"}
	client := New(server.URL, server.Client(), nil)

	summary, err := client.ConflictsSummary(context.Background(), ts, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalConflicts)
	assert.Equal(t, 1, ts.refreshCalls)
	assert.Equal(t, 2, calls)
}

type recordedCall struct {
	endpoint string
	status   int
}

type fakeMetricsRecorder struct {
	calls   []recordedCall
	retries int
}

func (f *fakeMetricsRecorder) ObserveUpstreamCall(endpoint string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedCall{endpoint: endpoint, status: status})
}

func (f *fakeMetricsRecorder) RecordUpstreamRetry() {
	f.retries++
}

func TestClientRecordsCallMetricsAndRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(models.Lesson{ID: 42})
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "stale", refreshed: "fresh"}
	client := New(server.URL, server.Client(), nil)
	recorder := &fakeMetricsRecorder{}
	client.SetMetrics(recorder)

	_, err := client.Lesson(context.Background(), ts, 42)
	require.NoError(t, err)

	assert.Equal(t, 1, recorder.retries)
	require.Len(t, recorder.calls, 2)
	assert.Equal(t, "GET /lesson/:id", recorder.calls[0].endpoint)
	assert.Equal(t, http.StatusUnauthorized, recorder.calls[0].status)
	assert.Equal(t, http.StatusOK, recorder.calls[1].status)
}

func TestClientSecondUnauthorizedExpiresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "stale", refreshed: "still-bad"}
	client := New(server.URL, server.Client(), nil)

	_, err := client.ConflictsSummary(context.Background(), ts, 7)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErr.Code)
	assert.Equal(t, 1, ts.refreshCalls)
}

func TestClientRefreshFailureExpiresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "stale", refreshErr: errors.New("refresh token revoked")}
	client := New(server.URL, server.Client(), nil)

	_, err := client.ConflictsSummary(context.Background(), ts, 7)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErr.Code)
}

func TestClientListEncodesQuery(t *testing.T) {
	var captured string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(Page{Items: []json.RawMessage{json.RawMessage(`{"id":1,"name":"FIT"}`)}, Total: 1})
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "ok"}
	client := New(server.URL, server.Client(), nil)

	items, total, err := ListAs[models.GroupRef](context.Background(), client, ts, "group", models.ListQuery{
		Page:     2,
		PageSize: 25,
		SortBy:   "name",
		Desc:     true,
		Filters:  map[string][]string{"faculty_ids": {"3", "5"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "FIT", items[0].Name)

	assert.Contains(t, captured, "page=2")
	assert.Contains(t, captured, "pageSize=25")
	assert.Contains(t, captured, "sort_by=name")
	assert.Contains(t, captured, "desc=true")
	assert.Contains(t, captured, "faculty_ids=3")
	assert.Contains(t, captured, "faculty_ids=5")
}

func TestClientUpstreamErrorCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "lesson overlaps another lesson"})
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "ok"}
	client := New(server.URL, server.Client(), nil)

	_, err := client.UpdateLesson(context.Background(), ts, 42, models.LessonPayload{})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUpstream.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "lesson overlaps another lesson", appErr.Message)
}

func TestClientExportScheduleFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "excel", r.URL.Query().Get("format"))
		assert.Equal(t, []string{"1", "2"}, r.URL.Query()["group_ids"])
		w.Header().Set("Content-Disposition", `attachment; filename="spring-2025.xlsx"`)
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write([]byte("xlsx-bytes"))
	}))
	defer server.Close()

	ts := &fakeTokenSource{token: "ok"}
	client := New(server.URL, server.Client(), nil)

	file, err := client.ExportSchedule(context.Background(), ts, 7, "excel", []int64{1, 2}, "")
	require.NoError(t, err)
	assert.Equal(t, "spring-2025.xlsx", file.Filename)
	assert.Equal(t, []byte("xlsx-bytes"), file.Data)
}

func TestClientLoginFormEncoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "dean", r.PostForm.Get("username"))
		_ = json.NewEncoder(w).Encode(models.TokenPair{AccessToken: "at", RefreshToken: "rt"})
	}))
	defer server.Close()

	client := New(server.URL, server.Client(), nil)
	pair, err := client.Login(context.Background(), "dean", "secret")
	require.NoError(t, err)
	assert.Equal(t, "at", pair.AccessToken)
	assert.Equal(t, "rt", pair.RefreshToken)
}
