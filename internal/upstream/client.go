// Package upstream is the data access layer over the university REST API.
// Every fetch and mutation in the gateway flows through here: generic entity
// CRUD, the calendar and conflict endpoints, auth token exchange, and the
// schedule export download.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/msu-tj/schedule-desk-api/internal/models"
	appErrors "github.com/msu-tj/schedule-desk-api/pkg/errors"
)

// TokenSource supplies the bearer token for outbound requests and refreshes
// it when the upstream answers 401. Refresh is attempted once per request; a
// second 401 means the session is gone.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// MetricsRecorder receives call timings and auth-retry counts.
type MetricsRecorder interface {
	ObserveUpstreamCall(endpoint string, status int, duration time.Duration)
	RecordUpstreamRetry()
}

// Client talks to the upstream university API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	metrics MetricsRecorder
}

// New constructs a client. baseURL includes the /api prefix.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

// SetMetrics attaches a recorder for call durations and retries.
func (c *Client) SetMetrics(m MetricsRecorder) {
	c.metrics = m
}

// Page is a generic paginated list response.
type Page struct {
	Items []json.RawMessage `json:"items"`
	Total int               `json:"total"`
}

// upstreamDetail is the error shape the upstream API returns on failure.
type upstreamDetail struct {
	Detail string `json:"detail"`
}

// Login exchanges credentials for a token pair. The upstream token endpoint
// is form-encoded.
func (c *Client) Login(ctx context.Context, username, password string) (*models.TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "auth request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid username or password")
	}
	if resp.StatusCode >= 300 {
		return nil, c.upstreamError(resp)
	}

	pair := &models.TokenPair{}
	if err := json.NewDecoder(resp.Body).Decode(pair); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed auth response")
	}
	return pair, nil
}

// RefreshToken exchanges a refresh token for a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	body, _ := json.Marshal(map[string]string{"refresh_token": refreshToken})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "refresh request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "refresh token rejected")
	}
	if resp.StatusCode >= 300 {
		return nil, c.upstreamError(resp)
	}

	pair := &models.TokenPair{}
	if err := json.NewDecoder(resp.Body).Decode(pair); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed refresh response")
	}
	return pair, nil
}

// List fetches a paginated, filtered, sorted entity collection.
func (c *Client) List(ctx context.Context, ts TokenSource, entity string, q models.ListQuery) (*Page, error) {
	query := url.Values{}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.SortBy != "" {
		query.Set("sort_by", q.SortBy)
		query.Set("desc", strconv.FormatBool(q.Desc))
	}
	for key, values := range q.Filters {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	page := &Page{}
	if err := c.do(ctx, ts, http.MethodGet, "/"+entity+"/", query, nil, page); err != nil {
		return nil, err
	}
	return page, nil
}

// Lister fetches one page of an entity collection.
type Lister interface {
	List(ctx context.Context, ts TokenSource, entity string, q models.ListQuery) (*Page, error)
}

// ListAs fetches and decodes an entity collection into typed items.
func ListAs[T any](ctx context.Context, lister Lister, ts TokenSource, entity string, q models.ListQuery) ([]T, int, error) {
	page, err := lister.List(ctx, ts, entity, q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]T, 0, len(page.Items))
	for _, raw := range page.Items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("malformed %s item", entity))
		}
		items = append(items, item)
	}
	return items, page.Total, nil
}

// Get fetches a single entity by id.
func (c *Client) Get(ctx context.Context, ts TokenSource, entity string, id int64) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, ts, http.MethodGet, fmt.Sprintf("/%s/%d", entity, id), nil, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Create posts a new entity.
func (c *Client) Create(ctx context.Context, ts TokenSource, entity string, payload interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, ts, http.MethodPost, "/"+entity+"/", nil, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Update patches an entity with a complete representation.
func (c *Client) Update(ctx context.Context, ts TokenSource, entity string, id int64, payload interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, ts, http.MethodPatch, fmt.Sprintf("/%s/%d", entity, id), nil, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Delete removes an entity.
func (c *Client) Delete(ctx context.Context, ts TokenSource, entity string, id int64) error {
	return c.do(ctx, ts, http.MethodDelete, fmt.Sprintf("/%s/%d", entity, id), nil, nil, nil)
}

// CalendarLessons fetches the lessons of a schedule, optionally bounded to a
// date window.
func (c *Client) CalendarLessons(ctx context.Context, ts TokenSource, scheduleID int64, dateFrom, dateTo string) (*models.CalendarLessonList, error) {
	query := url.Values{}
	query.Set("schedule_id", strconv.FormatInt(scheduleID, 10))
	if dateFrom != "" {
		query.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		query.Set("date_to", dateTo)
	}

	list := &models.CalendarLessonList{}
	if err := c.do(ctx, ts, http.MethodGet, "/lesson/calendar", query, nil, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ScheduleGroups fetches the groups involved in a schedule's lessons.
func (c *Client) ScheduleGroups(ctx context.Context, ts TokenSource, scheduleID int64) (*models.ScheduleGroupList, error) {
	query := url.Values{}
	query.Set("schedule_id", strconv.FormatInt(scheduleID, 10))

	list := &models.ScheduleGroupList{}
	if err := c.do(ctx, ts, http.MethodGet, "/lesson/groups", query, nil, list); err != nil {
		return nil, err
	}
	return list, nil
}

// ConflictsSummary fetches the conflict summary for a schedule.
func (c *Client) ConflictsSummary(ctx context.Context, ts TokenSource, scheduleID int64) (*models.ConflictsSummary, error) {
	query := url.Values{}
	query.Set("schedule_id", strconv.FormatInt(scheduleID, 10))

	summary := &models.ConflictsSummary{}
	if err := c.do(ctx, ts, http.MethodGet, "/lesson/conflicts/summary", query, nil, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// WorkloadWarnings fetches schedule-local workload overrun warnings.
func (c *Client) WorkloadWarnings(ctx context.Context, ts TokenSource, scheduleID int64) (*models.WorkloadWarningList, error) {
	list := &models.WorkloadWarningList{}
	path := fmt.Sprintf("/professor_workload/warnings/local/%d", scheduleID)
	if err := c.do(ctx, ts, http.MethodGet, path, nil, nil, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Lesson fetches a single lesson with its joined group, room, professor and
// subject.
func (c *Client) Lesson(ctx context.Context, ts TokenSource, lessonID int64) (*models.Lesson, error) {
	lesson := &models.Lesson{}
	if err := c.do(ctx, ts, http.MethodGet, fmt.Sprintf("/lesson/%d", lessonID), nil, nil, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// UpdateLesson commits a full lesson representation.
func (c *Client) UpdateLesson(ctx context.Context, ts TokenSource, lessonID int64, payload models.LessonPayload) (*models.Lesson, error) {
	lesson := &models.Lesson{}
	if err := c.do(ctx, ts, http.MethodPatch, fmt.Sprintf("/lesson/%d", lessonID), nil, payload, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// ExportFile is a downloaded schedule export.
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

// ExportSchedule downloads a rendered schedule. groupIDs nil means every
// group in the schedule. The filename is taken from Content-Disposition when
// the upstream provides it.
func (c *Client) ExportSchedule(ctx context.Context, ts TokenSource, scheduleID int64, format string, groupIDs []int64, filename string) (*ExportFile, error) {
	query := url.Values{}
	query.Set("format", format)
	for _, id := range groupIDs {
		query.Add("group_ids", strconv.FormatInt(id, 10))
	}
	if filename != "" {
		query.Set("filename", filename)
	}

	path := fmt.Sprintf("/schedule/%d/export", scheduleID)
	resp, err := c.doRaw(ctx, ts, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to read export body")
	}

	return &ExportFile{
		Data:        data,
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// do performs an authenticated JSON request and decodes the response into
// out when non-nil.
func (c *Client) do(ctx context.Context, ts TokenSource, method, path string, query url.Values, payload, out interface{}) error {
	resp, err := c.doRaw(ctx, ts, method, path, query, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "malformed upstream response")
	}
	return nil
}

// doRaw performs the request with the 401-refresh-retry policy and returns
// the open response for 2xx statuses.
func (c *Client) doRaw(ctx context.Context, ts TokenSource, method, path string, query url.Values, payload interface{}) (*http.Response, error) {
	token, err := ts.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()

		token, err = ts.Refresh(ctx)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
		}

		if c.metrics != nil {
			c.metrics.RecordUpstreamRetry()
		}
		resp, err = c.send(ctx, method, path, query, payload, token)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			_ = resp.Body.Close()
			return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
		}
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, c.upstreamError(resp)
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload interface{}, token string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "upstream request failed")
	}
	if c.metrics != nil {
		c.metrics.ObserveUpstreamCall(endpointLabel(method, path), resp.StatusCode, time.Since(start))
	}
	return resp, nil
}

// endpointLabel collapses numeric path segments so lesson and schedule ids do
// not fan out the metric's label set.
func endpointLabel(method, path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return method + " " + strings.Join(segments, "/")
}

func (c *Client) upstreamError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := fmt.Sprintf("upstream returned %d", resp.StatusCode)
	detail := upstreamDetail{}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		message = detail.Detail
	}

	status := http.StatusBadGateway
	switch resp.StatusCode {
	case http.StatusNotFound:
		status = http.StatusNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		status = http.StatusBadRequest
	case http.StatusForbidden:
		status = http.StatusForbidden
	}

	c.logger.Warn("upstream error",
		zap.Int("status", resp.StatusCode),
		zap.String("message", message),
	)
	return appErrors.New(appErrors.ErrUpstream.Code, status, message)
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
